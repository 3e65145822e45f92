package weather

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/plausch-chat/plausch/internal/meteo"
)

// FormatReport renders a forecast as the fixed text layout expected by the
// chat clients: a current-conditions block followed by an hourly table.
func FormatReport(fc *meteo.Forecast) string {
	var b strings.Builder

	b.WriteString("Aktuells Wetter:\n")
	fmt.Fprintf(&b, " Zeit: %s\n", fc.Current.Time)
	fmt.Fprintf(&b, " Temperatur: %s %s\n", num(fc.Current.Temperature), fc.CurrentUnits.Temperature)
	fmt.Fprintf(&b, " Relative Luftfeuchtigkeit: %s %s\n", num(fc.Current.RelativeHumidity), fc.CurrentUnits.RelativeHumidity)
	fmt.Fprintf(&b, " Windgeschwindigkeit: %s %s\n", num(fc.Current.WindSpeed), fc.CurrentUnits.WindSpeed)
	b.WriteString("\n")

	b.WriteString("Stündliche Vorhersage:\n")
	fmt.Fprintf(&b, "%-25s %-20s %-30s %-25s\n",
		"Zeit", "Temperatur (2m)", "Relative Luftfeuchtigkeit (2m)", "Windgeschwindigkeit (10m)")

	for i := 0; i < fc.Hourly.Len(); i++ {
		fmt.Fprintf(&b, "%-25s %-4s %-15s %-4s %-25s %-4s %-22s\n",
			fc.Hourly.Time[i],
			num(fc.Hourly.Temperature[i]), fc.HourlyUnits.Temperature,
			num(fc.Hourly.RelativeHumidity[i]), fc.HourlyUnits.RelativeHumidity,
			num(fc.Hourly.WindSpeed[i]), fc.HourlyUnits.WindSpeed)
	}

	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
