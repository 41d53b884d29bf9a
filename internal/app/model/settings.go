package model

import "time"

// SettingsID is the primary key of the only settings row
const SettingsID uint = 1

// Settings is the storefront's contact and policy content
type Settings struct {
	ID            uint      `gorm:"primarykey" json:"-"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	Instagram     string    `json:"instagram"`
	Facebook      string    `json:"facebook"`
	WhatsApp      string    `gorm:"column:whatsapp" json:"whatsapp"`
	AboutUs       string    `gorm:"type:text" json:"about_us"`
	Mission       string    `gorm:"type:text" json:"mission"`
	Vision        string    `gorm:"type:text" json:"vision"`
	BusinessHours string    `json:"business_hours"`
	ShippingInfo  string    `gorm:"type:text" json:"shipping_info"`
	ReturnPolicy  string    `gorm:"type:text" json:"return_policy"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Settings) TableName() string {
	return "settings"
}

const (
	defaultAboutUs = "En Amaretto creemos que cada joya cuenta una historia. Somos una marca mexicana " +
		"dedicada a crear piezas elegantes y atemporales que acompañan tus momentos más especiales. " +
		"Cada diseño es seleccionado con cuidado para ofrecerte calidad, estilo y un precio justo."
	defaultMission = "Ofrecer joyería de calidad que realce la belleza y personalidad de cada persona, " +
		"brindando una experiencia de compra cercana, confiable y accesible en todo México."
	defaultVision = "Ser la marca de joyería favorita de nuestras clientas, reconocida por su diseño, " +
		"su calidad y la confianza que construimos en cada pedido."
	defaultReturnPolicy = "Aceptamos cambios dentro de los primeros 7 días posteriores a la entrega, " +
		"siempre que la pieza se encuentre en perfectas condiciones y en su empaque original. " +
		"Por higiene, los aretes no tienen cambio. Contáctanos por WhatsApp para iniciar tu solicitud."
)

// DefaultSettings returns the hard-coded values used on first read
func DefaultSettings() Settings {
	return Settings{
		ID:            SettingsID,
		Phone:         "+52 614 192 0272",
		Email:         "jewerlyamaretto@gmail.com",
		Address:       "México",
		Instagram:     "https://www.instagram.com/amarettojoyeria",
		Facebook:      "https://www.facebook.com/share/1DMdpx8wrg/",
		WhatsApp:      "526141920272",
		AboutUs:       defaultAboutUs,
		Mission:       defaultMission,
		Vision:        defaultVision,
		BusinessHours: "Lunes a Viernes: 9:00 AM - 6:00 PM",
		ShippingInfo:  "Envíos a todo México",
		ReturnPolicy:  defaultReturnPolicy,
	}
}

// BackfillContent fills empty long-form content fields with their defaults and
// reports whether anything changed.
func (s *Settings) BackfillContent() bool {
	d := DefaultSettings()
	changed := false
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&s.AboutUs, d.AboutUs},
		{&s.Mission, d.Mission},
		{&s.Vision, d.Vision},
		{&s.ReturnPolicy, d.ReturnPolicy},
	} {
		if *f.dst == "" {
			*f.dst = f.def
			changed = true
		}
	}
	return changed
}

// ResetContent restores the long-form content fields to their defaults
func (s *Settings) ResetContent() {
	d := DefaultSettings()
	s.AboutUs = d.AboutUs
	s.Mission = d.Mission
	s.Vision = d.Vision
	s.ReturnPolicy = d.ReturnPolicy
}
