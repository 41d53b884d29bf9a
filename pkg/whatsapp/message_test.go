package whatsapp

import (
	"net/url"
	"strings"
	"testing"

	"github.com/amaretto/amaretto-backend/internal/app/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeOrderMessage(t *testing.T) {
	lines := []pricing.Line{
		{ProductID: "a", Name: "Anillo Luna", UnitPrice: 150, Quantity: 2},
		{ProductID: "b", Name: "Aretes Perla", UnitPrice: 99.5, Quantity: 1},
	}

	msg := ComposeOrderMessage(lines, 549.5)

	want := "Hola, me interesa confirmar mi pedido:\n\n" +
		"• Anillo Luna x2 - $300 MXN\n" +
		"• Aretes Perla x1 - $99.5 MXN\n" +
		"\nTotal: $549.5 MXN\n\n" +
		"(El envío se coordinará al confirmar el pedido)"
	assert.Equal(t, want, msg)
}

func TestComposeOrderMessage_SkipsInvalidLines(t *testing.T) {
	msg := ComposeOrderMessage([]pricing.Line{{Name: "Roto", UnitPrice: 10, Quantity: 0}}, 0)

	assert.NotContains(t, msg, "Roto")
	assert.Contains(t, msg, "Total: $0 MXN")
}

func TestLink(t *testing.T) {
	link := Link("+52 614 192 0272", "Hola & adiós\nTotal: $300")

	require.True(t, strings.HasPrefix(link, "https://wa.me/526141920272?text="))
	assert.NotContains(t, link, "+")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Hola & adiós\nTotal: $300", parsed.Query().Get("text"))
}
