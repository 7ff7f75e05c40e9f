package env

// Sample represents a single environmental measurement (BMP).
type Sample struct {
	Source string `json:"source"`

	Temperature float64 `json:"temp_c"`      // °C
	Pressure    float64 `json:"pressure_pa"` // Pa
	PressureHPa float64 `json:"pressure_hpa"`
}
