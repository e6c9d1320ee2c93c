package excel

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pulsecraft/marketing-engine-backend/internal/models"
)

// CalendarExporter renders a completed campaign's content calendar as an
// Excel workbook for handoff to non-technical marketing teams.
type CalendarExporter struct{}

func NewCalendarExporter() *CalendarExporter {
	return &CalendarExporter{}
}

var calendarColumns = []string{
	"day", "theme", "content_type", "messaging", "channels", "post_time",
	"caption", "caption_score", "image_refs", "video_ref", "degraded", "notes",
}

// Export builds the workbook in memory. The campaign must carry a
// strategy result; creative assets are included when present.
func (e *CalendarExporter) Export(campaign *models.Campaign) ([]byte, error) {
	if campaign.StrategyResult == nil {
		return nil, fmt.Errorf("campaign %s has no content calendar to export", campaign.ID)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Calendar"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	f.SetActiveSheet(0)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"FFFF00"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	degradedStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"FFC000"}, // Orange
			Pattern: 1,
		},
	})

	for i, col := range calendarColumns {
		cell := fmt.Sprintf("%s1", columnToLetter(i+1))
		f.SetCellValue(sheetName, cell, col)
	}
	f.SetCellStyle(sheetName, "A1", columnToLetter(len(calendarColumns))+strconv.Itoa(1), headerStyle)

	for i, col := range calendarColumns {
		colLetter := columnToLetter(i + 1)
		width := 18.0

		switch col {
		case "day", "caption_score", "degraded":
			width = 10.0
		case "messaging", "caption":
			width = 50.0
		case "image_refs", "video_ref", "notes":
			width = 40.0
		}

		f.SetColWidth(sheetName, colLetter, colLetter, width)
	}

	assetsByDay := make(map[int]*models.DayAssets)
	if campaign.CreativeResult != nil {
		for i := range campaign.CreativeResult.Days {
			day := &campaign.CreativeResult.Days[i]
			assetsByDay[day.Day] = day
		}
	}

	for j, plan := range campaign.StrategyResult.Days {
		rowNum := j + 2 // Start from row 2 (after headers)

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), plan.Day)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), plan.Theme)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), plan.ContentType)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), plan.Messaging)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), strings.Join(plan.Channels, ", "))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowNum), plan.PostTime)

		assets, ok := assetsByDay[plan.Day]
		if !ok {
			continue
		}
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowNum), assets.Caption)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowNum), assets.CaptionScore)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", rowNum), strings.Join(assets.ImageRefs, ", "))
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", rowNum), assets.VideoRef)
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", rowNum), assets.Degraded)
		f.SetCellValue(sheetName, fmt.Sprintf("L%d", rowNum), assets.DegradedNote)

		if assets.Degraded {
			f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("%s%d", columnToLetter(len(calendarColumns)), rowNum), degradedStyle)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the download name for a campaign export
func (e *CalendarExporter) Filename(campaignID string) string {
	return fmt.Sprintf("campaign_%s_calendar.xlsx", campaignID)
}

// Helper function to convert column number to Excel column letter
func columnToLetter(col int) string {
	var result string
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
