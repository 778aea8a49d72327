package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"vgpulse/pkg/contracts/domain"
)

// SalesCSVHeader is the column layout of the public video game sales dataset
var SalesCSVHeader = []string{
	"Name", "Platform", "Year_of_Release", "Genre", "Publisher",
	"NA_Sales", "EU_Sales", "JP_Sales", "Other_Sales", "Global_Sales",
	"Critic_Score", "Critic_Count", "User_Score", "User_Count", "Developer", "Rating",
}

// Counts for SampleSalesRows
const (
	SampleValidRecords   = 10
	SampleSkippedRecords = 5
)

// SalesRow builds a dataset row in SalesCSVHeader order
func SalesRow(name, platform, year, genre, globalSales, rating string) []string {
	return []string{name, platform, year, genre, "", "", "", "", "", globalSales, "", "", "", "", "", rating}
}

// SampleSalesRows returns a small dataset spanning 2010 to 2012 plus five rows
// the loader must drop. Manufacturer shares for the valid rows are:
//
//	2010: Nintendo 50, Sony 20, Microsoft 30
//	2011: Nintendo 40, Sony 40, Microsoft 0 (PC holds the remaining 20)
//	2012: Nintendo 10, Sony 30, Microsoft 60
func SampleSalesRows() [][]string {
	return [][]string{
		SalesRow("Wii Sports Resort", "Wii", "2010.0", "Sports", "5.0", "E"),
		SalesRow("Kinect Adventures!", "X360", "2010", "Misc", "3.0", "E"),
		SalesRow("Gran Turismo 5", "PS3", "2010", "Racing", "2.0", "E"),
		SalesRow("Super Mario 3D Land", "3DS", "2011", "Platform", "4.0", "E"),
		SalesRow("Uncharted 3: Drake's Deception", "PS3", "2011", "Action", "4.0", "T"),
		SalesRow("The Sims Medieval", "PC", "2011", "Simulation", "2.0", "T"),
		SalesRow("Halo 4", "X360", "2012", "Shooter", "6.0", "M"),
		SalesRow("Call of Duty: Black Ops II", "PS3", "2012", "Shooter", "3.0", "M"),
		SalesRow("New Super Mario Bros. U", "WiiU", "2012", "Platform", "1.0", "E"),
		SalesRow("Pokemon Black Version 2", "DS", "2012", "Role-Playing", "0.0", ""),
		// dropped rows
		SalesRow("Madden NFL 2004", "PS2", "N/A", "Sports", "5.23", "E"),
		SalesRow("Mystery Title", "", "2011", "Action", "1.0", "E"),
		SalesRow("Unreleased Shooter", "PS4", "2012", "Shooter", "", "M"),
		SalesRow("Imagine: Makeup Artist", "DS", "2020", "Simulation", "0.29", "E"),
		SalesRow("Brothers Conflict: Precious Baby", "PSV", "2017", "Action", "0.01", ""),
	}
}

// SampleRecords returns the valid rows of SampleSalesRows as loaded records
func SampleRecords() []domain.SalesRecord {
	return []domain.SalesRecord{
		{Name: "Wii Sports Resort", Platform: "Wii", Year: 2010, Genre: "Sports", GlobalSales: 5.0, Rating: "E"},
		{Name: "Kinect Adventures!", Platform: "X360", Year: 2010, Genre: "Misc", GlobalSales: 3.0, Rating: "E"},
		{Name: "Gran Turismo 5", Platform: "PS3", Year: 2010, Genre: "Racing", GlobalSales: 2.0, Rating: "E"},
		{Name: "Super Mario 3D Land", Platform: "3DS", Year: 2011, Genre: "Platform", GlobalSales: 4.0, Rating: "E"},
		{Name: "Uncharted 3: Drake's Deception", Platform: "PS3", Year: 2011, Genre: "Action", GlobalSales: 4.0, Rating: "T"},
		{Name: "The Sims Medieval", Platform: "PC", Year: 2011, Genre: "Simulation", GlobalSales: 2.0, Rating: "T"},
		{Name: "Halo 4", Platform: "X360", Year: 2012, Genre: "Shooter", GlobalSales: 6.0, Rating: "M"},
		{Name: "Call of Duty: Black Ops II", Platform: "PS3", Year: 2012, Genre: "Shooter", GlobalSales: 3.0, Rating: "M"},
		{Name: "New Super Mario Bros. U", Platform: "WiiU", Year: 2012, Genre: "Platform", GlobalSales: 1.0, Rating: "E"},
		{Name: "Pokemon Black Version 2", Platform: "DS", Year: 2012, Genre: "Role-Playing", GlobalSales: 0.0},
	}
}

// WriteSalesCSV writes header and rows to a CSV file in a temp directory and
// returns its path. A nil header writes SalesCSVHeader.
func WriteSalesCSV(t *testing.T, header []string, rows [][]string, withBOM bool) string {
	t.Helper()

	if header == nil {
		header = SalesCSVHeader
	}

	var buf bytes.Buffer
	if withBOM {
		buf.Write([]byte{0xEF, 0xBB, 0xBF})
	}
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}

	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

// WriteSalesXLSX writes header and rows to the first sheet of a new workbook
func WriteSalesXLSX(t *testing.T, header []string, rows [][]string) string {
	t.Helper()

	if header == nil {
		header = SalesCSVHeader
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	all := append([][]string{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("set row %d: %v", i, err)
		}
	}

	path := filepath.Join(t.TempDir(), "sales.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
