package page

import "time"

// Draft is the pre-compilation bundle produced by the Discovery pass. It is
// never persisted; Ingestion turns a valid Draft plus rendered HTML into a
// Page.
type Draft struct {
	Filename         string
	Identifier       string
	Name             *string
	Body             string
	MDContentHash    string
	Tags             []string
	ModifiedDatetime *time.Time
	CreatedDatetime  *time.Time
}

// ToPage assembles a Page from a validated Draft and its rendered HTML.
func (d Draft) ToPage(htmlContent string) Page {
	return Page{
		Identifier:       d.Identifier,
		Filename:         d.Filename,
		Name:             d.Name,
		HTMLContent:      htmlContent,
		MDContent:        d.Body,
		MDContentHash:    d.MDContentHash,
		Tags:             d.Tags,
		ModifiedDatetime: d.ModifiedDatetime,
		CreatedDatetime:  d.CreatedDatetime,
	}
}
