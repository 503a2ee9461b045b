package upload

import (
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// windowsDeviceNames are refused as bare filenames.
var windowsDeviceNames = map[string]bool{
	"CON": true, "AUX": true, "COM1": true, "COM2": true, "COM3": true,
	"COM4": true, "LPT1": true, "LPT2": true, "LPT3": true, "PRN": true, "NUL": true,
}

// SecureFilename returns a version of name that is safe to store on disk.
// Path separators become word breaks, whitespace runs become underscores,
// characters outside [A-Za-z0-9_.-] are dropped and leading/trailing dots
// and underscores are trimmed. The result may be empty.
func SecureFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")

	if base, _, _ := strings.Cut(name, "."); windowsDeviceNames[strings.ToUpper(base)] {
		name = "_" + name
	}
	return name
}
