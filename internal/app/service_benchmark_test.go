package app

import (
	"context"
	"testing"

	"github.com/awmpietro/guard-patrol-case/internal/patrol"
	"github.com/awmpietro/guard-patrol-case/internal/patrol/cache"
	"github.com/awmpietro/guard-patrol-case/internal/patrol/expect"
)

const benchGrid = `....#.....
.........#
..........
..#.......
.......#..
..........
.#..^.....
........#.
#.........
......#...
`

func benchmarkService() *Service {
	return NewService(patrol.NewParser(), patrol.NewEngine(), cache.NewInMemory(1024), expect.NewAsserter())
}

func benchmarkAnalyze(b *testing.B, mode patrol.Mode) {
	svc := benchmarkService()
	opts := AnalyzeOptions{Mode: mode, Expect: "loops == 6"}

	r, _, err := svc.Analyze(context.Background(), benchGrid, opts)
	if err != nil {
		b.Fatalf("warmup analyze failed: %v", err)
	}
	if !r.Expectation.Passed {
		b.Fatalf("warmup expectation failed: %+v", r)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, _, err := svc.Analyze(context.Background(), benchGrid, opts); err != nil {
			b.Fatalf("analyze failed: %v", err)
		}
	}
}

func BenchmarkServiceAnalyzeExtrapolate(b *testing.B) {
	benchmarkAnalyze(b, patrol.ModeExtrapolate)
}

func BenchmarkServiceAnalyzeBruteForce(b *testing.B) {
	benchmarkAnalyze(b, patrol.ModeBruteForce)
}

func BenchmarkServiceAnalyzeCachedParallel(b *testing.B) {
	svc := benchmarkService()

	if _, _, err := svc.Analyze(context.Background(), benchGrid, AnalyzeOptions{}); err != nil {
		b.Fatalf("warmup analyze failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, _, err := svc.Analyze(context.Background(), benchGrid, AnalyzeOptions{}); err != nil {
				b.Fatalf("analyze failed: %v", err)
			}
		}
	})
}
