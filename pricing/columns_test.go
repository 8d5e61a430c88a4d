package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionColumn(t *testing.T) {
	tests := map[string]string{
		"Región Metropolitana":      "Precio_Region_Metropolitana",
		"Región de Valparaíso":      "Precio_Valparaiso",
		"Región del Biobío":         "Precio_Biobio",
		"Aysén del Gral. C. Ibáñez": "Precio_Aysen_del_Gral_C_Ibanez",
		"Arica-Parinacota":          "Precio_Arica_Parinacota",
		"Region_ID_16":              "Precio_Region_ID_16",
	}

	for in, want := range tests {
		assert.Equal(t, want, RegionColumn(in), in)
	}
}
