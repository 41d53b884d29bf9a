// Package whatsapp builds the prefilled checkout message and its wa.me deep link.
package whatsapp

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/amaretto/amaretto-backend/internal/app/pricing"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	greeting = "Hola, me interesa confirmar mi pedido:"
	footer   = "(El envío se coordinará al confirmar el pedido)"
	baseURL  = "https://wa.me/"
)

var printer = message.NewPrinter(language.MustParse("es-MX"))

// FormatAmount renders an amount the way the storefront displays prices
func FormatAmount(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// ComposeOrderMessage lists each line with its quantity and line total, then the
// grand total. Lines with an invalid quantity are skipped.
func ComposeOrderMessage(lines []pricing.Line, total float64) string {
	var b strings.Builder
	b.WriteString(greeting)
	b.WriteString("\n\n")

	for _, l := range lines {
		lineTotal, err := pricing.LineTotal(l)
		if err != nil {
			continue
		}
		b.WriteString("• ")
		b.WriteString(l.Name)
		b.WriteString(" x")
		b.WriteString(printer.Sprint(l.Quantity))
		b.WriteString(" - $")
		b.WriteString(FormatAmount(lineTotal))
		b.WriteString(" MXN\n")
	}

	b.WriteString("\nTotal: $")
	b.WriteString(FormatAmount(total))
	b.WriteString(" MXN\n\n")
	b.WriteString(footer)
	return b.String()
}

// Link returns the wa.me deep link for number with text prefilled. Anything
// that is not a digit is dropped from number.
func Link(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return baseURL + digits + "?text=" + encoded
}
