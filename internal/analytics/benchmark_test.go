package analytics

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"vgpulse/internal/config"
	"vgpulse/pkg/contracts/domain"
)

// syntheticRecords builds a dataset roughly the size of the public one
func syntheticRecords(n int) []domain.SalesRecord {
	rng := rand.New(rand.NewSource(42))
	platforms := []string{"Wii", "DS", "PS2", "PS3", "PS4", "X360", "XOne", "PC", "GBA", "PSP", "3DS", "N64"}
	genres := []string{"Action", "Sports", "Shooter", "Role-Playing", "Platform", "Racing", "Misc", "Puzzle"}
	ratings := []string{"E", "T", "M", "E10+", ""}

	records := make([]domain.SalesRecord, n)
	for i := range records {
		records[i] = domain.SalesRecord{
			Name:        fmt.Sprintf("game-%d", i),
			Platform:    platforms[rng.Intn(len(platforms))],
			Genre:       genres[rng.Intn(len(genres))],
			Rating:      ratings[rng.Intn(len(ratings))],
			Year:        1985 + rng.Intn(32),
			GlobalSales: rng.ExpFloat64() * 0.5,
		}
	}
	return records
}

func BenchmarkShareAggregator(b *testing.B) {
	agg := NewShareAggregator(MustManufacturerMap(config.DefaultManufacturers()))
	records := syntheticRecords(16000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		agg.Aggregate(records)
	}
}

func BenchmarkDistributionBuilder(b *testing.B) {
	builder := NewDistributionBuilder(DefaultDistributionConfig(), nil)
	records := syntheticRecords(16000)
	req := domain.DistributionRequest{Dimension: domain.DimensionPlatform, Mode: domain.ModeAllCategories}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := builder.Build(context.Background(), records, req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkForecastProjector(b *testing.B) {
	mapping := MustManufacturerMap(config.DefaultManufacturers())
	shares := NewShareAggregator(mapping).Aggregate(syntheticRecords(16000))
	projector := NewForecastProjector(mapping, DefaultForecastConfig(), nil, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := projector.Project(context.Background(), shares); err != nil {
			b.Fatal(err)
		}
	}
}
