// Package eticket renders the printable ticket of an order.
package eticket

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/kirinyoku/matchday/internal/domain"
	qrcode "github.com/skip2/go-qrcode"
)

var ErrNotPrintable = errors.New("only successful orders have an eticket")

type Input struct {
	Order        domain.Order
	Fixture      domain.FixtureSummary
	ZoneName     string
	AudienceName string
}

// VerifyPayload is the string encoded in the QR code.
func VerifyPayload(o domain.Order) string {
	return fmt.Sprintf("matchday:order:%s:%s", o.ID, strings.Join(o.SeatLabels(), ","))
}

// Render returns a single-page A4 PDF.
func Render(in Input) ([]byte, error) {
	const op = "eticket.Render"

	if in.Order.Status != domain.OrderSuccess {
		return nil, fmt.Errorf("%s:%w", op, ErrNotPrintable)
	}

	qr, err := qrcode.Encode(VerifyPayload(in.Order), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 15, "MATCHDAY eTICKET")
	pdf.Ln(18)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 55, "F")

	pdf.SetXY(20, yStart+7)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("%s vs %s", in.Fixture.TeamOne.Name, in.Fixture.TeamTwo.Name))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	line := func(label, value string) {
		pdf.SetX(20)
		pdf.Cell(0, 8, label+": "+value)
		pdf.Ln(6)
	}
	line("Stadium", in.Fixture.Stadium.Name)
	line("Date", in.Fixture.Slot.Date.Format("Mon 02 Jan 2006"))
	line("Kick-off", fmt.Sprintf("%s - %s", in.Fixture.Slot.Start.Format("15:04"), in.Fixture.Slot.End.Format("15:04")))
	line("Zone", in.ZoneName)
	line("Seats", strings.Join(in.Order.SeatLabels(), ", "))

	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 145, yStart+5, 45, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	pdf.SetY(yStart + 63)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "ORDER")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Order: "+in.Order.ID.String())
	pdf.Ln(6)
	pdf.Cell(0, 6, "Holder: "+in.AudienceName)
	pdf.Ln(6)
	if in.Order.Payment != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Paid: %s (%s)", in.Order.Payment.Amount.StringFixed(2), in.Order.Payment.Method))
		pdf.Ln(6)
	}

	pdf.SetY(280)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Present the QR code at the gate. One scan per seat.", "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return buf.Bytes(), nil
}
