// Package templates provides project scaffolding templates.
//
// # Available Templates
//
//   - minimal: server-rendered html/template pages
//   - spa: React pages with a Go function bridge
//
// # Usage
//
//	tmpl, err := templates.Get("minimal")
//	if err != nil {
//	    return err
//	}
//	if err := tmpl.Create(projectDir, cfg); err != nil {
//	    return err
//	}
//
// Template files are executed with [[ ]] delimiters, so page files keep
// their own {{ }} actions untouched:
//
//	[[.ProjectName]]     - Name of the project
//	[[.ModulePath]]      - Go module path
//	[[.JSRuntime]]       - JavaScript runtime (spa)
//	[[.PackageManager]]  - Package manager (spa)
package templates
