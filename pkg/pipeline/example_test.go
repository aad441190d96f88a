package pipeline_test

import (
	"fmt"

	"github.com/matzehuels/flowtower/pkg/ledger"
	"github.com/matzehuels/flowtower/pkg/pipeline"
)

func ExampleBuild() {
	records := []ledger.Record{
		{Row: 1, Kind: "PAYMENT", SourceBank: "BCA", SourceAccount: "1", TargetBank: "MANDIRI", TargetAccount: "2", AmountRaw: "500.000,00", DateRaw: "01/02/2024"},
		{Row: 2, Kind: "PAYMENT", SourceBank: "BCA", SourceAccount: "1", TargetBank: "MANDIRI", TargetAccount: "2", AmountRaw: "1.500.000,00", DateRaw: "03/02/2024"},
	}

	result, err := pipeline.Build(records, pipeline.Options{})
	if err != nil {
		panic(err)
	}
	fmt.Println(result.Status)
	for _, e := range result.Export.Edges {
		fmt.Println(e.Source, "->", e.Target, "|", e.Label)
	}
	fmt.Println(result.Levels())

	filtered, _ := pipeline.Build(records, pipeline.Options{MinValue: pipeline.DefaultMinValue})
	fmt.Println(filtered.Status, "-", filtered.Status.Message())
	// Output:
	// ok
	// BCA|1 -> MANDIRI|2 | 03/02/2024 | 2.00 Juta | 2x transaksi
	// map[BCA|1:0 MANDIRI|2:1]
	// no_match - no transactions match the filter
}
