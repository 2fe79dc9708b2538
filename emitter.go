package main

import (
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"go.uber.org/zap"
)

const (
	contentFile = "content.md"
	pageFile    = "page.tsx"
)

// EmitResult lists the files written for one unit
type EmitResult struct {
	Dir         string
	ContentPath string
	PagePath    string
}

// Emitter writes page artifacts under the pages root
type Emitter struct {
	root     string
	siteURL  string
	pageTmpl *template.Template
	hubTmpl  *template.Template
}

// NewEmitter parses the page templates, honouring file overrides
func NewEmitter(settings *Settings, overrides *ConfigOverrides) (*Emitter, error) {
	var pagePath, hubPath *string
	if overrides != nil {
		pagePath = overrides.PageTemplatePath
		hubPath = overrides.HubTemplatePath
	}

	pageText, err := readOverride(pagePath, defaultPageTemplate)
	if err != nil {
		return nil, err
	}
	hubText, err := readOverride(hubPath, defaultHubTemplate)
	if err != nil {
		return nil, err
	}

	pageTmpl, err := ParsePageTemplate("city-page", pageText)
	if err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}
	hubTmpl, err := ParsePageTemplate("state-page", hubText)
	if err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}

	return &Emitter{
		root:     settings.PagesRoot(),
		siteURL:  settings.SiteURL,
		pageTmpl: pageTmpl,
		hubTmpl:  hubTmpl,
	}, nil
}

// UnitDir is <root>/<state>/<city>.
func (e *Emitter) UnitDir(u Unit) string {
	return filepath.Join(e.root, Slugify(u.State), Slugify(u.City))
}

// PagePath is the file whose presence marks a unit as done.
func (e *Emitter) PagePath(u Unit) string {
	return filepath.Join(e.UnitDir(u), pageFile)
}

// HubPath is the state hub page.
func (e *Emitter) HubPath(state string) string {
	return filepath.Join(e.root, Slugify(state), pageFile)
}

// Emit writes content.md and then page.tsx. page.tsx goes last so a unit
// interrupted between the two writes is regenerated on the next run.
func (e *Emitter) Emit(u Unit, text string) (*EmitResult, error) {
	dir := e.UnitDir(u)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	rendered, err := RenderCityPage(e.pageTmpl, BuildCityPage(u, text, e.siteURL))
	if err != nil {
		return nil, err
	}
	if err := checkDisclaimer(e.pageTmpl.Name(), rendered); err != nil {
		return nil, err
	}

	result := &EmitResult{
		Dir:         dir,
		ContentPath: filepath.Join(dir, contentFile),
		PagePath:    filepath.Join(dir, pageFile),
	}
	if err := writeFile(result.ContentPath, []byte(text)); err != nil {
		return nil, err
	}
	if err := writeFile(result.PagePath, []byte(rendered)); err != nil {
		return nil, err
	}

	zap.S().Debugf("Wrote %s and %s", result.ContentPath, result.PagePath)
	return result, nil
}

// EmitHub writes the state hub page unless it already exists.
func (e *Emitter) EmitHub(state string, units []Unit) (string, bool, error) {
	path := e.HubPath(state)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return path, false, &IOError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}

	rendered, err := RenderHubPage(e.hubTmpl, BuildHubPage(state, units, e.siteURL))
	if err != nil {
		return path, false, err
	}
	if err := checkDisclaimer(e.hubTmpl.Name(), rendered); err != nil {
		return path, false, err
	}
	if err := writeFile(path, []byte(rendered)); err != nil {
		return path, false, err
	}
	return path, true, nil
}

// checkDisclaimer rejects output from a template that dropped the disclaimer.
func checkDisclaimer(name, rendered string) error {
	if !strings.Contains(rendered, Disclaimer) {
		return &ConfigError{Reason: name + " template does not render the disclaimer"}
	}
	return nil
}

// writeFile replaces path atomically via a temp file in the same directory.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
