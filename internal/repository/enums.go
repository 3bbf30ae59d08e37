package repository

// Fixed enumerations for catalog and routine tags. Values are stored as
// plain strings in the database; validation happens at the API boundary
// before any row is written.

// GruposMusculares lists the accepted muscle-group tags.
var GruposMusculares = []string{
	"abs", "biceps", "espalda", "gemelos",
	"hombros", "pectorales", "piernas", "triceps",
}

// NivelesDificultad lists the accepted difficulty tags.
var NivelesDificultad = []string{"principiante", "intermedio", "avanzado"}

// CategoriasRutina lists the accepted routine categories.
var CategoriasRutina = []string{"fuerza", "hipertrofia", "resistencia", "definicion", "funcional"}

func contains(vals []string, s string) bool {
	for _, v := range vals {
		if v == s {
			return true
		}
	}
	return false
}

// ValidGrupoMuscular reports whether s is a known muscle group.
func ValidGrupoMuscular(s string) bool { return contains(GruposMusculares, s) }

// ValidNivelDificultad reports whether s is a known difficulty level.
func ValidNivelDificultad(s string) bool { return contains(NivelesDificultad, s) }

// ValidCategoriaRutina reports whether s is a known routine category.
func ValidCategoriaRutina(s string) bool { return contains(CategoriasRutina, s) }
