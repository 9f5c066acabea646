package scrub

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// HasJavaScript reports whether the document contains at least one
// JavaScript-triggering construct. It is deliberately coarser than the scrub:
// the presence of OpenAction, AA or annotation/field actions counts as a
// positive even when the underlying action is not JavaScript-typed, because
// any of those slots can carry a script. Routing such documents through the
// scrub is harmless since the scrub itself only removes JavaScript-typed
// entries.
//
// Checks run in a fixed order and short-circuit on the first match:
// catalog keys, the JavaScript name tree, page and annotation triggers,
// then the AcroForm dictionary.
func (e *Engine) HasJavaScript(ctx *model.Context) (bool, error) {
	root, err := ctx.Catalog()
	if err != nil {
		return false, fmt.Errorf("failed to get catalog: %w", err)
	}

	if _, found := root.Find("OpenAction"); found {
		return true, nil
	}
	if _, found := root.Find("AA"); found {
		return true, nil
	}

	if o, found := root.Find("Names"); found {
		if names := derefDict(ctx, o); names != nil {
			if _, found := names.Find("JavaScript"); found {
				return true, nil
			}
		}
	}

	for p := 1; p <= ctx.PageCount; p++ {
		pageDict, _, _, err := ctx.PageDict(p, false)
		if err != nil || pageDict == nil {
			continue
		}
		if _, found := pageDict.Find("AA"); found {
			return true, nil
		}
		o, found := pageDict.Find("Annots")
		if !found {
			continue
		}
		for _, a := range derefArray(ctx, o) {
			annot := derefDict(ctx, a)
			if annot == nil {
				continue
			}
			if hasAnyKey(annot, "A", "AA", "JS") {
				return true, nil
			}
		}
	}

	if o, found := root.Find("AcroForm"); found {
		if form := derefDict(ctx, o); form != nil {
			if hasAnyKey(form, "AA", "XFA") {
				return true, nil
			}
			if fieldsObj, found := form.Find("Fields"); found {
				for _, f := range derefArray(ctx, fieldsObj) {
					field := derefDict(ctx, f)
					if field == nil {
						continue
					}
					if hasAnyKey(field, "A", "AA", "JS") {
						return true, nil
					}
				}
			}
		}
	}

	return false, nil
}

func hasAnyKey(d types.Dict, keys ...string) bool {
	for _, k := range keys {
		if _, found := d.Find(k); found {
			return true
		}
	}
	return false
}
