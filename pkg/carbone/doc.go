// Package carbone is a client for the Carbone document generation service.
//
// A typical render uploads a template once and renders it many times:
//
//	cfg := carbone.DefaultConfig()
//	token, err := carbone.NewAPIToken(os.Getenv("CARBONE_TOKEN"))
//	client, err := carbone.NewClient(cfg, token)
//	tmpl, err := carbone.NewTemplateFile("invoice.odt")
//	opts, err := carbone.NewRenderOptions(`{"data":{"id":42},"convertTo":"pdf"}`)
//	pdf, err := client.GenerateReport(ctx, tmpl, opts, "")
//
// Template ids are content addressed: GenerateTemplateID hashes an optional
// payload salt followed by the template bytes, so the same template is only
// uploaded when the Service does not already have it.
package carbone
