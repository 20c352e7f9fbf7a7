// Package prompt builds the final prompt string sent to a generation
// provider from selected clip records and an optional template.
package prompt

import (
	"fmt"
	"strings"

	"github.com/pastego/pastego/internal/model"
)

// MaterialsMarker is the substitution point inside a template prompt.
const MaterialsMarker = "{{materials}}"

// materialSeparator joins the per-item sections of the materials block.
const materialSeparator = "\n\n---\n\n"

// Assemble renders the selected items into a materials block and
// combines it with the template and extra instruction. Item order is
// the caller's selection order and is preserved verbatim. Assemble
// never fails; empty inputs produce an empty prompt, which is the
// caller's mistake to avoid.
func Assemble(items []model.ClipRecord, tpl *model.Template, extra string) string {
	materials := materialsBlock(items)
	extra = strings.TrimSpace(extra)

	if tpl != nil {
		var out string
		if strings.Contains(tpl.Prompt, MaterialsMarker) {
			out = strings.Replace(tpl.Prompt, MaterialsMarker, materials, 1)
		} else {
			// Marker missing: append rather than fail.
			out = tpl.Prompt + "\n\n" + materials
		}
		if extra != "" {
			out += "\n\nAdditional requirement: " + extra
		}
		return out
	}

	if extra != "" {
		if materials == "" {
			return extra
		}
		return extra + "\n\nReference materials:\n\n" + materials
	}

	return materials
}

// materialsBlock renders each item as an ordinal-labeled section.
func materialsBlock(items []model.ClipRecord) string {
	if len(items) == 0 {
		return ""
	}

	sections := make([]string, 0, len(items))
	for i, item := range items {
		sections = append(sections, fmt.Sprintf(
			"Material %d (%s):\n%s", i+1, item.ClipType, item.Content,
		))
	}
	return strings.Join(sections, materialSeparator)
}
