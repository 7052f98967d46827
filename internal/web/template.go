package web

const pageHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <title>BedrockSmith</title>
  <style>
    body { margin: 0; font-family: -apple-system, "Segoe UI", sans-serif; background: #f6f7f9; color: #1f2328; }
    header { display: flex; gap: 16px; align-items: center; padding: 10px 16px; background: #232f3e; color: #fff; }
    header .brand { font-weight: 700; }
    header form { display: flex; gap: 8px; align-items: center; flex-wrap: wrap; }
    header input, header select { padding: 4px 6px; }
    main { display: grid; grid-template-columns: 380px 1fr; gap: 12px; padding: 12px; }
    .panel { background: #fff; border: 1px solid #d0d7de; border-radius: 8px; padding: 10px; overflow: auto; max-height: calc(100vh - 90px); }
    .meta { color: #656d76; font-size: 12px; }
    .error { color: #cf222e; }
    .item { display: block; padding: 6px; border-radius: 6px; color: inherit; text-decoration: none; }
    .item:hover { background: #f3f4f6; }
    .item.selected { background: #ddf4ff; }
    .tag { display: inline-block; padding: 1px 6px; margin: 1px; border-radius: 10px; font-size: 12px; color: #fff; }
    .tag-blue { background: #0969da; }
    .tag-green { background: #1a7f37; }
    .tag-orange { background: #bc4c00; }
    .tag-gray { background: #6e7781; }
    .tag-red { background: #cf222e; }
    .views a { margin-right: 8px; }
    .views a.active { font-weight: 700; }
    h3 { margin: 14px 0 6px; border-bottom: 1px solid #d0d7de; }
    .role { font-weight: 700; font-size: 12px; margin-top: 8px; text-transform: uppercase; }
    pre { white-space: pre-wrap; word-break: break-word; background: #f6f8fa; padding: 8px; border-radius: 6px; }
    .text { white-space: pre-wrap; }
  </style>
</head>
<body>
  <header>
    <div class="brand">BedrockSmith</div>
    <form method="post" action="/fetch">
      <input type="hidden" name="view" value="{{.View}}" />
      <label>Log group <input name="log_group" value="{{.Query.LogGroup}}" size="34" /></label>
      <label>Region <input name="region" value="{{.Query.Region}}" size="12" /></label>
      <label>Lookback
        <select name="hours">
          {{range .LookbackChoices}}<option value="{{.}}"{{if eq . $.Query.LookbackHours}} selected{{end}}>{{.}}h</option>{{end}}
        </select>
      </label>
      <label>Limit <input type="number" name="limit" value="{{.Query.Limit}}" min="{{.MinLimit}}" max="{{.MaxLimit}}" step="{{.LimitStep}}" /></label>
      <button type="submit">Fetch events</button>
    </form>
  </header>

  <main>
    <aside class="panel">
      <div class="meta">
        {{len .Items}} events{{if .Failed}}, {{.Failed}} failed{{end}}{{if .FetchedAt}} &middot; fetched {{.FetchedAt}}{{end}}
      </div>
      {{if .FetchError}}<p class="error">Fetch failed: {{.FetchError}}</p>{{end}}
      {{if not .Items}}<p class="meta">No events found. Adjust the settings and fetch.</p>{{end}}
      {{range .Items}}
      <a class="item{{if .Selected}} selected{{end}}" href="/?event={{.EventID}}&view={{$.View}}">
        <div class="meta">{{.Timestamp}}</div>
        {{if .Malformed}}<span class="tag tag-red">malformed record</span>
        {{else}}{{range .Tags}}<span class="tag tag-{{lower .Color.String}}">{{.Label}}</span>{{end}}{{end}}
      </a>
      {{end}}
    </aside>

    <section class="panel">
      {{with .Detail}}
        {{if .Malformed}}
          <p class="error">Malformed record: {{.Malformed}}</p>
          <pre>{{.Record}}</pre>
        {{else}}
          <div>{{range .Tags}}<span class="tag tag-{{lower .Color.String}}">{{.Label}}</span>{{end}}</div>
          <div class="meta">{{.Timestamp}} &middot; {{.EventID}}</div>
          <div class="views">
            {{range $.Views}}<a class="{{if eq . $.View}}active{{end}}" href="/?event={{$.Detail.EventID}}&view={{.}}">{{.}}</a>{{end}}
          </div>

          {{if .Record}}
            <h3>Record</h3>
            <pre>{{.Record}}</pre>
          {{else}}
            <h3>Input</h3>
            {{with .Input}}
              {{if .S3Path}}<p class="meta">Input body was offloaded to S3: <code>{{.S3Path}}</code></p>{{end}}
              {{if .Loadable}}
              <form method="post" action="/load">
                <input type="hidden" name="view" value="{{$.View}}" />
                <button type="submit">Load from S3</button>
              </form>
              {{end}}
              {{template "body" .}}
            {{end}}

            <h3>Output</h3>
            {{with .Output}}
              {{if .ErrorCode}}<p class="error">Error: {{.ErrorCode}}</p>{{end}}
              {{template "body" .}}
            {{end}}

            <h3>Metadata</h3>
            {{range .Metadata}}
              {{if .Children}}
                <div><strong>{{.Key}}</strong></div>
                {{range .Children}}<div>&nbsp;&nbsp;{{.Key}}: {{.Value}}</div>{{end}}
              {{else}}
                <div><strong>{{.Key}}</strong>: {{.Value}}</div>
              {{end}}
            {{end}}
          {{end}}
        {{end}}
      {{else}}
        <p class="meta">No event selected.</p>
      {{end}}
    </section>
  </main>
</body>
</html>
{{define "body"}}
  {{if .Notice}}<p class="meta">{{.Notice}}</p>{{end}}
  {{if .TextError}}<p class="error">Cannot render text: {{.TextError}}</p>{{end}}
  {{if .System}}<div class="role">SYSTEM</div><div class="text">{{.System}}</div>{{end}}
  {{range .Blocks}}<div class="role">{{.Role}}</div><div class="text">{{.Text}}</div>{{end}}
  {{if .JSON}}<pre>{{.JSON}}</pre>{{end}}
{{end}}`
