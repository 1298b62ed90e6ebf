package parser

import (
	"bytes"
	"fmt"
	"testing"
)

func generateFeatureFile(name string, scenarioCount int) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Feature: %s\n\n", name)
	for i := 1; i <= scenarioCount; i++ {
		fmt.Fprintf(&buf, "  Scenario: %s scenario %d\n", name, i)
		fmt.Fprintf(&buf, "    Given precondition %d\n", i)
		fmt.Fprintf(&buf, "    And another precondition %d\n", i)
		fmt.Fprintf(&buf, "    When action %d is taken\n", i)
		fmt.Fprintf(&buf, "    Then result %d is observed\n\n", i)
	}
	return buf.String()
}

func benchmarkParse(b *testing.B, fileCount, scenariosPerFile int) {
	b.Helper()
	sources := make([]Source, fileCount)
	for i := range sources {
		name := fmt.Sprintf("feature_%d", i)
		sources[i] = Source{Name: name + ".feature", Content: generateFeatureFile(name, scenariosPerFile)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(sources...); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParse_Small(b *testing.B)  { benchmarkParse(b, 5, 10) }
func BenchmarkParse_Medium(b *testing.B) { benchmarkParse(b, 50, 20) }
func BenchmarkParse_Large(b *testing.B)  { benchmarkParse(b, 200, 50) }
