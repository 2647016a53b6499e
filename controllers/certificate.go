package controllers

import (
	"bytes"
	"fmt"

	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// GenerateDonationCertificate builds a PDF certificate for a donor marked
// attended at a camp. Returns the document and its serial number.
func GenerateDonationCertificate(donor models.Donor, hospital models.Hospital, camp models.BloodCamp) ([]byte, string, error) {
	serial := uuid.New().String()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(178, 34, 34)
	pdf.CellFormat(0, 12, "Certificate of Blood Donation", "", 1, "C", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 12)
	pdf.SetY(pdf.GetY() + 8)
	pdf.MultiCell(0, 6, fmt.Sprintf("This is to certify that %s has donated blood at the camp below.", donor.Name), "", "C", false)

	pdf.SetY(pdf.GetY() + 8)
	addCertDetail(pdf, "Donor Name:", donor.Name, true)
	addCertDetail(pdf, "Blood Group:", donor.BloodGroup, false)

	pdf.SetY(pdf.GetY() + 6)
	addCertDetail(pdf, "Camp:", camp.Title, true)
	addCertDetail(pdf, "Location:", camp.Location, false)
	addCertDetail(pdf, "Date:", camp.Date.Format("2006-01-02"), false)

	pdf.SetY(pdf.GetY() + 6)
	addCertDetail(pdf, "Organized by:", hospital.Name, true)
	addCertDetail(pdf, "Certificate No:", serial, false)

	pdf.SetFont("Arial", "I", 10)
	pdf.SetY(pdf.GetY() + 10)
	pdf.MultiCell(0, 5, "Every donation can save up to three lives. Thank you!", "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), serial, nil
}

// addCertDetail adds a detail line to the PDF
func addCertDetail(pdf *gofpdf.Fpdf, label, value string, isHeader bool) {
	if isHeader {
		pdf.SetFont("Arial", "B", 12)
	} else {
		pdf.SetFont("Arial", "", 12)
	}
	pdf.CellFormat(0, 8, label+" "+value, "", 1, "", false, 0, "")
}
