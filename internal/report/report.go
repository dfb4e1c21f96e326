// Package report renders a printable battle sheet: both combatants, the
// current turn's timeline as two lanes along the time-unit axis, the
// settlement history and the event log.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"etherduel/internal/battle"
	"etherduel/internal/combat"
	"etherduel/internal/ether"
	"etherduel/internal/timeline"
)

const (
	pageW     = 595
	pageH     = 842
	margin    = 40
	fontSize  = 8
	titleSize = 16
	labelSize = 7
	lineH     = 10.0
	laneGap   = 46.0
	marker    = 7.0
)

// Input is everything drawn on the sheet.
type Input struct {
	Title       string
	State       battle.State
	Events      []combat.Event
	Settlements []battle.TurnSettlement
}

// Generate returns the PDF bytes for in.
func Generate(in Input) ([]byte, error) {
	pdf := build(in)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func build(in Input) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	newPage(pdf)

	title := in.Title
	if title == "" {
		title = "Battle Report"
	}
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(pageW-2*margin, 18, title, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", fontSize)
	pdf.SetXY(margin, margin+20)
	pdf.CellFormat(pageW-2*margin, lineH,
		fmt.Sprintf("Battle %s  |  turn %d  |  %s", shortID(in.State.ID), in.State.Turn, in.State.Outcome),
		"", 0, "L", false, 0, "")

	y := margin + 40.0
	y = drawCombatants(pdf, in.State, y)
	y = drawTimeline(pdf, in.State, y+14)
	y = drawSettlements(pdf, in.Settlements, y+14)
	drawEvents(pdf, in.Events, y+14)
	return pdf
}

func newPage(pdf *gofpdf.Fpdf) {
	pdf.AddPage()
	// Parchment background
	pdf.SetFillColor(245, 235, 210)
	pdf.Rect(0, 0, pageW, pageH, "F")
	pdf.SetDrawColor(80, 50, 30)
	pdf.SetTextColor(80, 50, 30)
	pdf.SetLineWidth(1)
	pdf.Rect(margin/2, margin/2, pageW-margin, pageH-margin, "D")
}

func drawCombatants(pdf *gofpdf.Fpdf, st battle.State, y float64) float64 {
	colW := float64(pageW-2*margin) / 2
	for i, c := range []combat.Combatant{st.Player, st.Enemy} {
		x := margin + float64(i)*colW
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetXY(x, y)
		pdf.CellFormat(colW, 12, c.Name, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", fontSize)
		lines := []string{
			fmt.Sprintf("HP %d/%d  block %d", c.HP, c.MaxHP, c.Block),
			fmt.Sprintf("energy %d/%d  str %d  agi %d", c.Energy, c.MaxEnergy, c.Strength, c.Agility),
			fmt.Sprintf("ether %d (overflow %d)", c.Ether, c.EtherOverflow),
			"tokens: " + tokenList(c),
		}
		for j, l := range lines {
			pdf.SetXY(x, y+14+float64(j)*lineH)
			pdf.CellFormat(colW-8, lineH, l, "", 0, "L", false, 0, "")
		}
		drawBar(pdf, x, y+14+float64(len(lines))*lineH+2, colW-20, c.HP, c.MaxHP)
	}
	return y + 14 + 5*lineH + 8
}

func drawBar(pdf *gofpdf.Fpdf, x, y, w float64, v, total int) {
	pdf.Rect(x, y, w, 5, "D")
	if total <= 0 || v <= 0 {
		return
	}
	pdf.SetFillColor(180, 40, 40)
	pdf.Rect(x, y, w*float64(min(v, total))/float64(total), 5, "F")
}

func tokenList(c combat.Combatant) string {
	all := c.Tokens.All()
	if len(all) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(all))
	for _, in := range all {
		parts = append(parts, fmt.Sprintf("%s x%d", in.ID, in.Stacks))
	}
	return strings.Join(parts, ", ")
}

// drawTimeline lays both sides' actions along one TU axis, player above and
// enemy below, joined in resolution order by a dashed path.
func drawTimeline(pdf *gofpdf.Fpdf, st battle.State, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(margin, y)
	pdf.CellFormat(200, 12, fmt.Sprintf("Turn %d timeline", st.Turn), "", 0, "L", false, 0, "")

	left, right := float64(margin)+50, float64(pageW-margin)-10
	top := y + 30
	lanes := map[timeline.Side]float64{timeline.Player: top, timeline.Enemy: top + laneGap}
	span := max(1, st.Queue.TotalTU())

	pdf.SetFont("Helvetica", "", labelSize)
	for side, ly := range lanes {
		pdf.SetXY(margin, ly-4)
		pdf.CellFormat(46, 8, string(side), "", 0, "L", false, 0, "")
		pdf.SetDrawColor(150, 120, 90)
		pdf.Line(left, ly, right, ly)
	}
	pdf.SetDrawColor(80, 50, 30)

	xOf := func(tu int) float64 { return left + (right-left)*float64(tu)/float64(span) }

	pdf.SetDrawColor(180, 40, 40)
	pdf.SetLineWidth(1.5)
	pdf.SetDashPattern([]float64{6, 4}, 0)
	for i := 0; i+1 < len(st.Queue); i++ {
		a, b := st.Queue[i], st.Queue[i+1]
		pdf.Line(xOf(a.TU), lanes[a.Actor], xOf(b.TU), lanes[b.Actor])
	}
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)

	for i, a := range st.Queue {
		x, ly := xOf(a.TU), lanes[a.Actor]
		style := "D"
		if i < st.Index {
			pdf.SetFillColor(80, 50, 30)
			style = "FD"
		}
		pdf.Circle(x, ly, marker/2+1, style)
		if i == st.Index && !st.Done() {
			pdf.SetLineWidth(2)
			pdf.Circle(x, ly, marker, "D")
			pdf.SetLineWidth(1)
		}
		label := a.Card.Name
		if label == "" {
			label = a.Card.ID
		}
		if len(label) > 14 {
			label = label[:11] + "..."
		}
		dy := -14.0
		if a.Actor == timeline.Enemy {
			dy = 7
		}
		pdf.SetXY(x-30, ly+dy)
		pdf.CellFormat(60, 7, fmt.Sprintf("%d. %s @%d", a.Order, label, a.TU), "", 0, "C", false, 0, "")
	}
	if len(st.Queue) == 0 {
		pdf.SetXY(left, top+laneGap/2-4)
		pdf.CellFormat(right-left, 8, "no actions planned", "", 0, "C", false, 0, "")
	}
	return top + laneGap + 20
}

func drawSettlements(pdf *gofpdf.Fpdf, rows []battle.TurnSettlement, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(margin, y)
	pdf.CellFormat(200, 12, "Ether settlements", "", 0, "L", false, 0, "")
	y += 16
	pdf.SetFont("Helvetica", "B", labelSize)
	cols := []float64{36, 150, 150, 60, 60}
	header := []string{"turn", "player", "enemy", "moved", "recovered"}
	x := float64(margin)
	for i, h := range header {
		pdf.SetXY(x, y)
		pdf.CellFormat(cols[i], lineH, h, "B", 0, "L", false, 0, "")
		x += cols[i]
	}
	y += lineH + 2
	pdf.SetFont("Helvetica", "", labelSize)
	for _, r := range rows {
		if y > pageH-margin-lineH {
			newPage(pdf)
			y = margin
		}
		cells := []string{
			fmt.Sprint(r.Turn),
			settlementText(r.Player),
			settlementText(r.Enemy),
			fmt.Sprintf("%d %s", r.Transfer.Moved, r.Transfer.Toward),
			fmt.Sprint(r.Transfer.Recovered),
		}
		x = margin
		for i, c := range cells {
			pdf.SetXY(x, y)
			pdf.CellFormat(cols[i], lineH, c, "", 0, "L", false, 0, "")
			x += cols[i]
		}
		y += lineH
	}
	return y
}

func settlementText(s ether.Settlement) string {
	if s.Combo == "" {
		return fmt.Sprintf("%d -> %d", s.Raw, s.Final)
	}
	return fmt.Sprintf("%d -> %d (%s x%.2f)", s.Raw, s.Final, s.Combo, s.Multiplier*s.Deflation)
}

// drawEvents writes the log, continuing onto new pages as needed.
func drawEvents(pdf *gofpdf.Fpdf, events []combat.Event, y float64) {
	if y > pageH-margin-40 {
		newPage(pdf)
		y = margin
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(margin, y)
	pdf.CellFormat(200, 12, "Event log", "", 0, "L", false, 0, "")
	y += 16
	pdf.SetFont("Helvetica", "", labelSize)
	for _, ev := range events {
		if y > pageH-margin-lineH {
			newPage(pdf)
			y = margin
		}
		if ev.Kind == combat.EventWarning {
			pdf.SetTextColor(180, 40, 40)
		}
		pdf.SetXY(margin, y)
		pdf.CellFormat(pageW-2*margin, lineH, eventLine(ev), "", 0, "L", false, 0, "")
		pdf.SetTextColor(80, 50, 30)
		y += lineH
	}
}

func eventLine(ev combat.Event) string {
	where := fmt.Sprintf("t%d", ev.Turn)
	if ev.Index >= 0 {
		where += fmt.Sprintf(" #%d", ev.Index+1)
	}
	who := ""
	if ev.Actor != "" {
		who = " " + string(ev.Actor)
		if ev.Card != "" {
			who += "/" + ev.Card
		}
	}
	return fmt.Sprintf("[%s%s] %s: %s", where, who, ev.Kind, ev.Message)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
