package httpui

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"runtime"
)

const layoutTemplate = "layout"

var pageTitles = map[string]string{
	"loginForm": "Login",
	"home":      "Home",
	"error":     "Error",
	"account":   "Account",
}

// Templates renders a named content template inside the shared layout.
type Templates struct {
	t         *template.Template
	basePath  string
	staticDir string
}

func ParseTemplates(basePath string) (*Templates, error) {
	dir, err := webDir()
	if err != nil {
		return nil, err
	}
	files, err := filepath.Glob(filepath.Join(dir, "templates", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no template files found in %s", dir)
	}
	t, err := template.New("login-ui").ParseFiles(files...)
	if err != nil {
		return nil, err
	}
	if t.Lookup(layoutTemplate) == nil {
		return nil, fmt.Errorf("template %q not defined", layoutTemplate)
	}
	return &Templates{t: t, basePath: basePath, staticDir: filepath.Join(dir, "static")}, nil
}

// webDir locates the web/ asset tree: next to the source first, then
// relative to the working directory.
func webDir() (string, error) {
	_, file, _, _ := runtime.Caller(0)
	candidates := []string{
		filepath.Join(filepath.Dir(file), "..", "..", "web"),
		"web",
	}
	for _, dir := range candidates {
		if info, err := os.Stat(filepath.Join(dir, "templates")); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", fmt.Errorf("web assets not found")
}

// Render executes the content template name with args and wraps the result
// in the layout. BasePath is always available to both.
func (t *Templates) Render(name string, args map[string]any) (string, error) {
	if name == layoutTemplate || t.t.Lookup(name) == nil {
		return "", fmt.Errorf("unknown template %q", name)
	}

	data := make(map[string]any, len(args)+1)
	for k, v := range args {
		data[k] = v
	}
	data["BasePath"] = t.basePath

	var content bytes.Buffer
	if err := t.t.ExecuteTemplate(&content, name, data); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}

	title, _ := args["Title"].(string)
	if title == "" {
		title = pageTitles[name]
	}
	page := map[string]any{
		"Title":    title,
		"BasePath": t.basePath,
		"Content":  template.HTML(content.String()),
	}
	var out bytes.Buffer
	if err := t.t.ExecuteTemplate(&out, layoutTemplate, page); err != nil {
		return "", fmt.Errorf("execute %s: %w", layoutTemplate, err)
	}
	return out.String(), nil
}
