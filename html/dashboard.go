// Package html serves the dashboard shell page. The page is a thin
// client over the JSON API: it loads the catalog list, renders the
// category tree and drives selection and refresh through /api.
package html

import (
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pricewatch.GO/config"
)

type Template struct {
	Templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.Templates.ExecuteTemplate(w, name, data)
}

// NewRenderer parses the embedded shell template.
func NewRenderer() *Template {
	return &Template{
		Templates: template.Must(template.New("dashboard.html").Parse(dashboardPage)),
	}
}

// RegisterDashboardRoutes registers the shell page on root.
func RegisterDashboardRoutes(e *echo.Echo, db *gorm.DB) {
	e.GET("/", func(c echo.Context) error {
		appName := "pricewatch"
		if config.AppConfig != nil && config.AppConfig.AppName != "" {
			appName = config.AppConfig.AppName
		}
		return c.Render(http.StatusOK, "dashboard.html", map[string]interface{}{
			"AppName": appName,
		})
	})
}

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.AppName}} – price comparison</title>
<style>
body{font-family:system-ui,sans-serif;margin:0;display:flex;height:100vh}
#tree{width:380px;overflow:auto;border-right:1px solid #ddd;padding:12px}
#main{flex:1;overflow:auto;padding:12px}
.cat{cursor:pointer;padding:2px 4px}
.cat.selected{background:#def}
.cat .count{color:#888;font-size:0.85em}
#notice{color:#b00;min-height:1.2em}
</style>
</head>
<body>
<div id="tree">
  <select id="catalogs"></select>
  <input id="search" placeholder="Search categories…">
  <button id="selectAll">Select all</button>
  <button id="clear">Clear</button>
  <div id="notice"></div>
  <div id="nodes"></div>
</div>
<div id="main">
  <h2>{{.AppName}}</h2>
  <div id="products"></div>
</div>
<script>
const api = p => fetch('/api' + p).then(r => r.json());
const post = (p, body) => fetch('/api' + p, {method:'POST',
  headers:{'Content-Type':'application/json'},
  body: body ? JSON.stringify(body) : null}).then(r => r.json());

function renderTree(cats, stats, parent) {
  for (const c of cats || []) {
    const div = document.createElement('div');
    div.className = 'cat';
    const st = (stats || {})[c.id];
    div.innerHTML = c.name + (st ? ' <span class="count">(' + st.total_products + ')</span>' : '');
    div.onclick = async e => {
      e.stopPropagation();
      const res = await post('/selection/toggle', {id: c.id});
      document.getElementById('notice').textContent = res.notice || res.error || '';
      load();
    };
    parent.appendChild(div);
    if (c.children && c.children.length) {
      const sub = document.createElement('div');
      sub.style.marginLeft = '14px';
      div.after(sub);
      renderTree(c.children, stats, sub);
    }
  }
}

async function load() {
  const data = await api('/categories');
  const nodes = document.getElementById('nodes');
  nodes.innerHTML = '';
  renderTree(data.categories, data.stats, nodes);
}

async function init() {
  const catalogs = await api('/catalogs');
  const sel = document.getElementById('catalogs');
  sel.innerHTML = catalogs.map(c => '<option value="' + c.id + ':' + c.name + '">' + c.name + '</option>').join('');
  sel.onchange = async () => {
    const [id, name] = sel.value.split(':');
    await post('/catalogs/select', {id: +id, name});
    load();
  };
  if (catalogs.length) { sel.onchange(); }
}
document.getElementById('selectAll').onclick = async () => {
  const res = await post('/selection/all');
  document.getElementById('notice').textContent = res.notice || '';
  load();
};
document.getElementById('clear').onclick = async () => {
  await fetch('/api/selection', {method:'DELETE'});
  document.getElementById('notice').textContent = '';
  load();
};
document.getElementById('search').oninput = async e => {
  const q = e.target.value;
  const data = await api('/categories/search?q=' + encodeURIComponent(q));
  const nodes = document.getElementById('nodes');
  nodes.innerHTML = '';
  renderTree(data.categories, {}, nodes);
};
init();
</script>
</body>
</html>`
