package analytics_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"vgpulse/internal/analytics"
	"vgpulse/internal/config"
	"vgpulse/pkg/contracts/domain"
)

var exampleRecords = []domain.SalesRecord{
	{Platform: "PS3", Genre: "Racing", Year: 2010, GlobalSales: 5},
	{Platform: "Wii", Genre: "Sports", Year: 2010, GlobalSales: 5},
	{Platform: "X360", Genre: "Shooter", Year: 2011, GlobalSales: 6},
	{Platform: "PS3", Genre: "Action", Year: 2011, GlobalSales: 2},
	{Platform: "PC", Genre: "Strategy", Year: 2011, GlobalSales: 2},
}

func ExampleShareAggregator_Aggregate() {
	mapping := analytics.MustManufacturerMap(config.DefaultManufacturers())

	for _, row := range analytics.NewShareAggregator(mapping).Aggregate(exampleRecords) {
		fmt.Printf("%d %-9s %5.1f%%\n", row.Year, row.Manufacturer, row.Share)
	}
	// Output:
	// 2010 Nintendo   50.0%
	// 2010 Sony       50.0%
	// 2010 Microsoft   0.0%
	// 2011 Nintendo    0.0%
	// 2011 Sony       20.0%
	// 2011 Microsoft  60.0%
}

func ExampleForecastProjector_Project() {
	mapping := analytics.MustManufacturerMap(config.DefaultManufacturers())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	shares := analytics.NewShareAggregator(mapping).Aggregate(exampleRecords)
	projector := analytics.NewForecastProjector(mapping,
		analytics.ForecastConfig{HorizonStart: 2012, HorizonEnd: 2013}, logger, nil)

	result, err := projector.Project(context.Background(), shares)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, p := range result.Points {
		if p.Type == domain.SeriesPredicted {
			fmt.Printf("%d %-9s %6.1f\n", p.Year, p.Manufacturer, p.Share)
		}
	}
	// Output:
	// 2012 Nintendo   -50.0
	// 2013 Nintendo  -100.0
	// 2012 Sony       -10.0
	// 2013 Sony       -40.0
	// 2012 Microsoft  120.0
	// 2013 Microsoft  180.0
}

func ExampleDistributionBuilder_TopCategories() {
	builder := analytics.NewDistributionBuilder(analytics.DistributionConfig{TopN: 2}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	top, err := builder.TopCategories(exampleRecords, domain.DimensionPlatform)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, c := range top {
		fmt.Printf("%s %.0f\n", c.Category, c.Total)
	}
	// Output:
	// PS3 7
	// X360 6
}
