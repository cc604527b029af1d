package parse

import "strings"

// Chilean comunas and cities recognized in venue/address text, Santiago
// metropolitan area first, then regional capitals.
var comunas = []string{
	"Santiago", "Providencia", "Las Condes", "Vitacura", "Ñuñoa", "La Reina",
	"Peñalolén", "La Florida", "Macul", "San Miguel", "San Joaquín", "La Granja",
	"Lo Espejo", "Pedro Aguirre Cerda", "San Ramón", "La Pintana", "El Bosque",
	"La Cisterna", "San Bernardo", "Puente Alto", "Maipú", "Cerrillos", "Estación Central",
	"Quinta Normal", "Lo Prado", "Pudahuel", "Cerro Navia", "Renca", "Quilicura",
	"Colina", "Lampa", "Huechuraba", "Conchalí", "Independencia", "Recoleta",
	"Viña del Mar", "Valparaíso", "Concón", "Antofagasta", "Temuco", "Puerto Montt",
	"Punta Arenas", "La Serena", "Coquimbo", "Arica", "Iquique", "Talca", "Chillán",
	"Concepción", "Talcahuano", "Rancagua", "Curicó", "Osorno", "Valdivia",
}

// Comuna finds the first known comuna mentioned in the given text, or ""
// when none matches.
func Comuna(text string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	for _, comuna := range comunas {
		if strings.Contains(lower, strings.ToLower(comuna)) {
			return comuna
		}
	}
	return ""
}
