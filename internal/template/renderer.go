package template

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ghaggin/students/internal/view"
)

//go:embed tmpl/*.html
var templateFS embed.FS

const (
	templateDir string = "tmpl"
)

type Data struct {
	PageTitle string
	Model     *view.Model
	Notices   []view.Notice
	MaxYear   int
	// ID of the record a confirmation page is about.
	ID string
}

var funcs = template.FuncMap{
	"noticeClass": func(n view.Notice) string { return n.Kind.String() },
	"isRegister":  func(f view.AuthForm) bool { return f == view.FormRegister },
	"pathEscape":  func(s string) string { return url.PathEscape(s) },
	"yearValue": func(y int) string {
		if y == 0 {
			return ""
		}
		return strconv.Itoa(y)
	},
}

func Render(w http.ResponseWriter, _ *http.Request, tmpl string, td any) error {
	t, err := template.New(tmpl).Funcs(funcs).ParseFS(templateFS,
		templateDir+"/"+tmpl,
		templateDir+"/"+"base.html",
	)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}

	err = t.ExecuteTemplate(buf, "base", td)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}
