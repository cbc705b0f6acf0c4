package sections

import "fmt"

// BuildPath is the client route of a wizard step. The resume name is used verbatim.
func BuildPath(templateID, resumeID, name, slug string) string {
	return fmt.Sprintf("/templates/%s/%s/%s/build/%s", templateID, resumeID, name, slug)
}

// PreviewPath is the client route of the final render.
func PreviewPath(templateID, resumeID string) string {
	return fmt.Sprintf("/templates/%s/%s/preview", templateID, resumeID)
}

// FirstStepPath routes a freshly created resume into the wizard.
func FirstStepPath(templateID, resumeID, name string) string {
	return BuildPath(templateID, resumeID, name, steps[0].Slug)
}
