package cli

const accountTemplate = `
=== Account Details ===

Name:        {{.Account.Name}}
ID:          {{.Account.ID}}
Type:        {{.Account.Type}}
Institution: {{.Account.Institution}}
Balance:     {{.Account.Balance}}
{{- if .Account.Hidden }}
Hidden:      yes
{{- end}}
{{- if not .Account.UpdatedAt.IsZero }}
Updated:     {{.Account.UpdatedAt.Format "2006-01-02 15:04"}}
{{- end}}

Recent transactions:
{{- range .Transactions }}
  {{.Date.Format "2006-01-02"}}  {{printf "%-14s" .Amount.String}}  {{.Description}}
{{- else }}
  none
{{- end}}
`
