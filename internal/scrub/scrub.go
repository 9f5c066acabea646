package scrub

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ScrubCatalog removes document-level triggers from the root dictionary:
// OpenAction and AA unconditionally, and the JavaScript entry of the Names
// dictionary. A Names dictionary left empty afterwards is removed entirely.
// The returned flag reports whether anything changed.
func (e *Engine) ScrubCatalog(ctx *model.Context) (bool, error) {
	root, err := ctx.Catalog()
	if err != nil {
		return false, fmt.Errorf("failed to get catalog: %w", err)
	}

	changed := removeKey(root, "OpenAction")
	changed = removeKey(root, "AA") || changed

	if o, found := root.Find("Names"); found {
		if names := derefDict(ctx, o); names != nil {
			if _, found := names.Find("JavaScript"); found {
				delete(names, "JavaScript")
				changed = true
			}
			if len(names) == 0 {
				delete(root, "Names")
				changed = true
			}
		}
	}

	return changed, nil
}

// ScrubPages removes page-level AA dictionaries and scrubs every annotation
// reachable through Annots: JavaScript-typed entries of A/AA are removed via
// scrubActionDict, and a direct JS key, which is never legitimate non-script
// content, is dropped unconditionally. Pages whose dictionary cannot be
// resolved are skipped.
func (e *Engine) ScrubPages(ctx *model.Context) (bool, error) {
	changed := false

	for p := 1; p <= ctx.PageCount; p++ {
		pageDict, _, _, err := ctx.PageDict(p, false)
		if err != nil || pageDict == nil {
			continue
		}
		changed = removeKey(pageDict, "AA") || changed

		o, found := pageDict.Find("Annots")
		if !found {
			continue
		}
		for _, a := range derefArray(ctx, o) {
			annot := derefDict(ctx, a)
			if annot == nil {
				continue
			}
			changed = e.scrubActionDict(ctx, annot) || changed
			changed = removeKey(annot, "JS") || changed
		}
	}

	return changed, nil
}

// ScrubAcroForm removes form-level triggers: AA and XFA unconditionally (XFA
// is treated as JavaScript-capable wholesale and never partially cleaned),
// then scrubs every field dictionary the same way annotations are scrubbed.
func (e *Engine) ScrubAcroForm(ctx *model.Context) (bool, error) {
	root, err := ctx.Catalog()
	if err != nil {
		return false, fmt.Errorf("failed to get catalog: %w", err)
	}

	o, found := root.Find("AcroForm")
	if !found {
		return false, nil
	}
	form := derefDict(ctx, o)
	if form == nil {
		return false, nil
	}

	changed := removeKey(form, "AA")
	changed = removeKey(form, "XFA") || changed

	if fieldsObj, found := form.Find("Fields"); found {
		for _, f := range derefArray(ctx, fieldsObj) {
			field := derefDict(ctx, f)
			if field == nil {
				continue
			}
			changed = e.scrubActionDict(ctx, field) || changed
			changed = removeKey(field, "JS") || changed
		}
	}

	return changed, nil
}

// scrubActionDict removes JavaScript-typed actions from a dictionary that may
// carry A and/or AA, preserving all co-located non-JavaScript actions:
//
//   - a single JavaScript action under A deletes the A key;
//   - an action array under A is rebuilt without its JavaScript elements and
//     replaced only when the length changed;
//   - JavaScript-valued entries of a concrete AA map are deleted, and an AA
//     left empty afterwards is removed; an AA of any other shape is malformed
//     and removed unconditionally.
func (e *Engine) scrubActionDict(ctx *model.Context, d types.Dict) bool {
	changed := false

	if o, found := d.Find("A"); found {
		resolved, err := ctx.Dereference(o)
		if err == nil {
			switch val := resolved.(type) {
			case types.Dict:
				if isJSAction(ctx, val) {
					delete(d, "A")
					changed = true
				}
			case types.Array:
				kept := make(types.Array, 0, len(val))
				for _, v := range val {
					if ad := derefDict(ctx, v); ad != nil && isJSAction(ctx, ad) {
						continue
					}
					kept = append(kept, v)
				}
				if len(kept) != len(val) {
					d["A"] = kept
					changed = true
				}
			}
		}
	}

	if o, found := d.Find("AA"); found {
		aa := derefDict(ctx, o)
		if aa == nil {
			// Unrecognized AA shape is assumed unsafe.
			delete(d, "AA")
			return true
		}
		for k, v := range aa {
			if vd := derefDict(ctx, v); vd != nil && isJSAction(ctx, vd) {
				delete(aa, k)
				changed = true
			}
		}
		if len(aa) == 0 {
			delete(d, "AA")
			changed = true
		}
	}

	return changed
}

// removeKey deletes key from d if present and reports whether it did.
func removeKey(d types.Dict, key string) bool {
	if _, found := d.Find(key); found {
		delete(d, key)
		return true
	}
	return false
}
