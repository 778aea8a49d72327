package analytics

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgpulse/internal/shared/testutil"
	"vgpulse/pkg/contracts/domain"
)

func newTestBuilder(t *testing.T, cfg DistributionConfig) *DistributionBuilder {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewDistributionBuilder(cfg, logger)
}

func categoriesOf(totals []domain.CategoryTotal) []string {
	out := make([]string, len(totals))
	for i, t := range totals {
		out[i] = t.Category
	}
	return out
}

func TestDistributionBuilder_TopCategories(t *testing.T) {
	tests := []struct {
		name string
		dim  domain.CategoryDimension
		topN int
		want []string
	}{
		{
			name: "platform ties broken by name",
			dim:  domain.DimensionPlatform,
			topN: 10,
			want: []string{"PS3", "X360", "Wii", "3DS", "PC", "WiiU", "DS"},
		},
		{
			name: "platform truncated",
			dim:  domain.DimensionPlatform,
			topN: 3,
			want: []string{"PS3", "X360", "Wii"},
		},
		{
			name: "rating skips missing values",
			dim:  domain.DimensionRating,
			topN: 10,
			want: []string{"E", "M", "T"},
		},
		{
			name: "genre",
			dim:  domain.DimensionGenre,
			topN: 2,
			want: []string{"Shooter", "Platform"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t, DistributionConfig{TopN: tt.topN})
			got, err := b.TopCategories(testutil.SampleRecords(), tt.dim)
			require.NoError(t, err)
			assert.Equal(t, tt.want, categoriesOf(got))
		})
	}
}

func TestDistributionBuilder_TopCategoriesDominateExcluded(t *testing.T) {
	b := newTestBuilder(t, DistributionConfig{TopN: 3})
	records := testutil.SampleRecords()

	top, err := b.TopCategories(records, domain.DimensionPlatform)
	require.NoError(t, err)
	all := topCategories(records, domain.DimensionPlatform, math.MaxInt)

	kept := make(map[string]bool)
	minKept := math.Inf(1)
	for _, c := range top {
		kept[c.Category] = true
		minKept = math.Min(minKept, c.Total)
	}
	assert.LessOrEqual(t, len(top), 3)
	for _, c := range all {
		if !kept[c.Category] {
			assert.LessOrEqual(t, c.Total, minKept, c.Category)
		}
	}
}

func TestDistributionBuilder_Build(t *testing.T) {
	b := newTestBuilder(t, DefaultDistributionConfig())
	records := testutil.SampleRecords()

	points, err := b.Build(context.Background(), records, domain.DistributionRequest{
		Dimension: domain.DimensionPlatform,
		Mode:      domain.ModeAllCategories,
	})
	require.NoError(t, err)
	require.Len(t, points, 7*DefaultSteps)

	// categories appear in rank order with an ascending grid over [0, p95]
	assert.Equal(t, "PS3", points[0].Category)
	assert.Equal(t, "DS", points[len(points)-1].Category)
	assert.Equal(t, 0.0, points[0].Value)
	assert.InDelta(t, 5.55, points[DefaultSteps-1].Value, 1e-12)

	for i, p := range points {
		assert.False(t, math.IsNaN(p.Density) || math.IsInf(p.Density, 0), "point %d", i)
		assert.GreaterOrEqual(t, p.Density, 0.0)
		if i%DefaultSteps > 0 {
			assert.Greater(t, p.Value, points[i-1].Value)
		}
	}

	// DS has one zero sale: bandwidth falls back to 1.06, density scaled by n=1
	ds := points[6*DefaultSteps]
	assert.Equal(t, "DS", ds.Category)
	assert.InDelta(t, 1/(1.06*math.Sqrt(2*math.Pi)), ds.Density, 1e-12)
}

func TestDistributionBuilder_BuildSingleCategory(t *testing.T) {
	b := newTestBuilder(t, DefaultDistributionConfig())

	points, err := b.Build(context.Background(), testutil.SampleRecords(), domain.DistributionRequest{
		Dimension: domain.DimensionPlatform,
		Mode:      domain.ModeSingleCategory,
		Category:  "Wii",
	})
	require.NoError(t, err)
	require.Len(t, points, DefaultSteps)

	for _, p := range points {
		assert.Equal(t, "Wii", p.Category)
	}
	// extent is [0, 5] from the single sale; bandwidth is 1.06*5
	last := points[len(points)-1]
	assert.Equal(t, 5.0, last.Value)
	assert.InDelta(t, 1/(5.3*math.Sqrt(2*math.Pi)), last.Density, 1e-12)
}

func TestDistributionBuilder_CountsScaleDensity(t *testing.T) {
	b := newTestBuilder(t, DistributionConfig{Steps: 50})
	records := []domain.SalesRecord{
		{Platform: "PS2", Genre: "Sports", Year: 2004, GlobalSales: 1},
		{Platform: "PS2", Genre: "Sports", Year: 2004, GlobalSales: 2},
		{Platform: "PS2", Genre: "Sports", Year: 2004, GlobalSales: 3},
		{Platform: "PS2", Genre: "Sports", Year: 2004, GlobalSales: 4},
	}

	points, err := b.Build(context.Background(), records, domain.DistributionRequest{
		Dimension: domain.DimensionGenre,
		Mode:      domain.ModeAllCategories,
	})
	require.NoError(t, err)
	require.Len(t, points, 50)

	values := []float64{1, 2, 3, 4}
	bw := bandwidth(values)
	for _, p := range points {
		assert.InDelta(t, 4*gaussianKDE(values, bw, p.Value), p.Density, 1e-12)
	}
}

func TestDistributionBuilder_EmptyAndErrors(t *testing.T) {
	allZero := []domain.SalesRecord{
		{Platform: "DS", Genre: "Puzzle", Year: 2008, GlobalSales: 0},
		{Platform: "DS", Genre: "Puzzle", Year: 2009, GlobalSales: 0},
	}
	noRatings := []domain.SalesRecord{
		{Platform: "GB", Genre: "Puzzle", Year: 1989, GlobalSales: 30},
	}

	tests := []struct {
		name    string
		records []domain.SalesRecord
		req     domain.DistributionRequest
		wantErr error
	}{
		{
			name:    "no records",
			records: nil,
			req:     domain.DistributionRequest{Dimension: domain.DimensionPlatform, Mode: domain.ModeAllCategories},
		},
		{
			name:    "no records single mode",
			records: nil,
			req:     domain.DistributionRequest{Dimension: domain.DimensionGenre, Mode: domain.ModeSingleCategory, Category: "Action"},
		},
		{
			name:    "dimension values all missing",
			records: noRatings,
			req:     domain.DistributionRequest{Dimension: domain.DimensionRating, Mode: domain.ModeAllCategories},
		},
		{
			name:    "zero width extent",
			records: allZero,
			req:     domain.DistributionRequest{Dimension: domain.DimensionPlatform, Mode: domain.ModeAllCategories},
		},
		{
			name:    "unknown dimension",
			records: testutil.SampleRecords(),
			req:     domain.DistributionRequest{Dimension: "Publisher", Mode: domain.ModeAllCategories},
			wantErr: domain.ErrInvalidDimension,
		},
		{
			name:    "category outside top list",
			records: testutil.SampleRecords(),
			req:     domain.DistributionRequest{Dimension: domain.DimensionPlatform, Mode: domain.ModeSingleCategory, Category: "Dreamcast"},
			wantErr: domain.ErrInvalidCategory,
		},
	}

	b := newTestBuilder(t, DefaultDistributionConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := b.Build(context.Background(), tt.records, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, points)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, points)
			assert.Empty(t, points)
		})
	}
}

func TestDistributionBuilder_CategoryOutsideTruncatedTop(t *testing.T) {
	b := newTestBuilder(t, DistributionConfig{TopN: 2})
	_, err := b.Build(context.Background(), testutil.SampleRecords(), domain.DistributionRequest{
		Dimension: domain.DimensionPlatform,
		Mode:      domain.ModeSingleCategory,
		Category:  "Wii",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestDistributionBuilder_Cancelled(t *testing.T) {
	b := newTestBuilder(t, DefaultDistributionConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Build(ctx, testutil.SampleRecords(), domain.DistributionRequest{
		Dimension: domain.DimensionPlatform,
		Mode:      domain.ModeAllCategories,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDistributionBuilder_ConcurrentCallsAgree(t *testing.T) {
	b := newTestBuilder(t, DefaultDistributionConfig())
	records := testutil.SampleRecords()
	req := domain.DistributionRequest{Dimension: domain.DimensionGenre, Mode: domain.ModeAllCategories}

	want, err := b.Build(context.Background(), records, req)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := b.Build(context.Background(), records, req)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestNewDistributionBuilder_Defaults(t *testing.T) {
	b := NewDistributionBuilder(DistributionConfig{Steps: 1, ExtentQuantile: 2}, nil)
	assert.Equal(t, DefaultDistributionConfig(), b.cfg)
}
