package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/apperror"
)

var exportHeaders = []string{
	"ID", "MISSION", "FREELANCE", "STATUT", "DATE ENTRETIEN", "FUSEAU HORAIRE", "CRÉÉE LE", "MISE À JOUR",
}

var statusLabels = map[domain.CandidatureStatus]string{
	domain.StatusEnAttente:   "En attente",
	domain.StatusEnEntretien: "En entretien",
	domain.StatusAcceptee:    "Acceptée",
	domain.StatusRefusee:     "Refusée",
}

func (u *candidatureUsecase) Export(ctx context.Context, userID string, role domain.Role, statuses []domain.CandidatureStatus) ([]byte, string, error) {
	views, err := u.ListForEntreprise(ctx, userID, role, statuses)
	if err != nil {
		return nil, "", err
	}

	data, err := candidaturesWorkbook(views)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	filename := fmt.Sprintf("candidatures_%s.xlsx", time.Now().Format("20060102_150405"))
	return data, filename, nil
}

func candidaturesWorkbook(views []domain.CandidatureView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Candidatures"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(sheet, "A1", endCell, headerStyle)

	for rowIdx, v := range views {
		row := []interface{}{
			v.ID,
			v.MissionTitre,
			v.FreelanceNom,
			statusLabels[v.Status],
			interviewCell(v),
			v.Timezone,
			v.CreatedAt.UTC().Format("2006-01-02 15:04"),
			v.UpdatedAt.UTC().Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	for i := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 22)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// interviewCell renders the interview date in the candidature's own timezone
func interviewCell(v domain.CandidatureView) string {
	if v.DateEntretien == nil {
		return ""
	}
	loc, err := time.LoadLocation(v.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return v.DateEntretien.In(loc).Format("2006-01-02 15:04")
}
