package display

import (
	"fmt"
	"io"

	"github.com/data-bridge/bridgeflow/internal/term"
)

// PrintBanner writes the ASCII art banner to w, in magenta when colors are
// enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, term.Paint(term.Magenta, banner))
}

const banner = ` _          _     _            __ _
| |__  _ __(_) __| | __ _  ___/ _| | _____      __
| '_ \| '__| |/ _`+"`"+` |/ _`+"`"+` |/ _ \ |_| |/ _ \ \ /\ / /
| |_) | |  | | (_| | (_| |  __/  _| | (_) \ V  V /
|_.__/|_|  |_|\__,_|\__, |\___|_| |_|\___/ \_/\_/
                    |___/`
