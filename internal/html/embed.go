package html

import (
	_ "embed"
)

// Embedded assets for the shell page.

//go:embed assets/shell.html
var shellHTMLTemplate string

//go:embed assets/styles.css
var stylesCSS string

//go:embed assets/loader.js
var loaderJS string
