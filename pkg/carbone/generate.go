package carbone

import (
	"context"
)

// GenerateReport renders template with options and returns the report bytes.
//
// The template id is derived locally from payload and the template content.
// A download of that id probes whether the Service already has the template;
// any probe failure counts as a miss and the template is uploaded (without a
// salt), in which case the id returned by the upload is used for rendering.
func (c *Client) GenerateReport(ctx context.Context, template *TemplateFile, options RenderOptions, payload string) ([]byte, error) {
	report, err := c.GenerateReportFile(ctx, template, options, payload)
	if err != nil {
		return nil, err
	}
	return report.Content, nil
}

// GenerateReportFile is GenerateReport returning the named Report.
func (c *Client) GenerateReportFile(ctx context.Context, template *TemplateFile, options RenderOptions, payload string) (*Report, error) {
	renderID, err := c.RenderReportWithFile(ctx, template, options, payload)
	if err != nil {
		return nil, err
	}
	return c.GetReportFile(ctx, renderID)
}

// GenerateReportWithTemplateID renders a template the Service is known to
// hold and returns the report bytes.
func (c *Client) GenerateReportWithTemplateID(ctx context.Context, id TemplateID, options RenderOptions) ([]byte, error) {
	renderID, err := c.RenderReport(ctx, id, options)
	if err != nil {
		return nil, err
	}
	return c.GetReport(ctx, renderID)
}

// RenderReportWithFile resolves the template id (probe, upload on miss) and
// submits the render, returning the render id.
func (c *Client) RenderReportWithFile(ctx context.Context, template *TemplateFile, options RenderOptions, payload string) (RenderID, error) {
	if options.raw == "" {
		return RenderID{}, &EmptyValueError{Kind: kindRenderOptions}
	}

	templateID, err := c.resolveTemplateID(ctx, template, payload)
	if err != nil {
		return RenderID{}, err
	}
	return c.RenderReport(ctx, templateID, options)
}

func (c *Client) resolveTemplateID(ctx context.Context, template *TemplateFile, payload string) (TemplateID, error) {
	content, err := template.Content()
	if err != nil {
		return TemplateID{}, err
	}
	candidate, err := GenerateTemplateID(content, payload)
	if err != nil {
		return TemplateID{}, err
	}

	_, probeErr := c.DownloadTemplate(ctx, candidate)
	if probeErr == nil {
		c.logger.Debug().
			Str("template_id", candidate.String()).
			Msg("Template already stored, skipping upload")
		return candidate, nil
	}

	// Not found and transient failures are not told apart here.
	c.logger.Debug().
		Str("template_id", candidate.String()).
		Err(probeErr).
		Msg("Template probe missed, uploading")

	return c.UploadTemplate(ctx, template.Name(), content, "")
}
