package scheduling

import (
	"strings"

	"github.com/rs/zerolog"
)

const (
	mshLine = "MSH|^~\\&|DOCTOLIB|CH|SIH|CH|20240319103025||OML^O33^OML_O33|123456|P|2.5"
	pidLine = "PID|1||12345||DOE^JOHN"
	schLine = "SCH|1|789||||CBC^HEMOGRAMME|||||^^NaN^20240319103025"
	aigLine = "AIG|1||CARDIO"
	ailLine = "AIL|1|B12"
)

func message(lines ...string) string {
	return strings.Join(lines, "\r")
}

// schWithCreator returns an SCH line with n fields whose second-to-last field
// holds creator.
func schWithCreator(n int, creator string) string {
	fields := make([]string, n)
	fields[0] = "SCH"
	fields[1] = "1"
	fields[2] = "789"
	fields[6] = "CBC^HEMOGRAMME"
	fields[11] = "^^45^20240319103025"
	fields[n-2] = creator
	return strings.Join(fields, "|")
}

func testSettings() Settings {
	return Settings{
		Version:          "1.0.0",
		SupportedFormats: map[string]string{FormatHL7: "2.5", FormatFHIR: "R4"},
	}
}

func newTestEngine() *Engine {
	return NewEngine(testSettings(), zerolog.Nop())
}
