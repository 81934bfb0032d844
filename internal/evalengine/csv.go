package evalengine

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// WritePodiumCSV renders podium rows in position order. Unscored rows
// render an empty final score.
func WritePodiumCSV(w io.Writer, rows []PodiumRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Posicion", "Nombre Completo", "Puntuacion Final", "Valor Desempate"}); err != nil {
		return err
	}
	for _, r := range rows {
		score := ""
		if r.ConsScore != nil {
			score = strconv.FormatFloat(*r.ConsScore, 'f', 2, 64)
		}
		rec := []string{
			strconv.Itoa(r.Position),
			r.DisplayName,
			score,
			r.TiebreakTimestamp.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDetailCSV renders one row per (evaluator, criterion) cell of the
// detail view.
func WriteDetailCSV(w io.Writer, d DetailView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Participante", "Evaluador", "Criterio", "Puntaje", "Promedio Criterio", "Desviacion"}); err != nil {
		return err
	}
	cells := make(map[int64]CriterionDetail, len(d.PerCriterion))
	descs := make(map[int64]string, len(d.PerCriterion))
	for _, c := range d.PerCriterion {
		cells[c.CriterionID] = c
		descs[c.CriterionID] = c.Description
	}
	for _, e := range d.PerEvaluator {
		for _, c := range d.PerCriterion {
			val, ok := e.ScoresByCriterion[c.CriterionID]
			if !ok {
				continue
			}
			cell := cells[c.CriterionID]
			rec := []string{
				d.DisplayName,
				e.DisplayName,
				descs[c.CriterionID],
				strconv.Itoa(val),
				strconv.FormatFloat(cell.Mean, 'f', 2, 64),
				strconv.FormatFloat(cell.Stdev, 'f', 2, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
