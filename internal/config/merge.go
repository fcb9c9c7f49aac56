package config

// Merge folds layers, lowest precedence first, into the effective Spec.
// A later interlocutor with an existing name overrides it field by field:
// whatever the later entry does not set is inherited. Macros and kits are
// replaced whole. Entries keep the position of their first declaration.
func Merge(layers ...*Layer) *Spec {
	spec := &Spec{}
	itIndex := make(map[string]int)
	macroIndex := make(map[string]int)
	kitIndex := make(map[string]int)
	for _, layer := range layers {
		if layer == nil || layer.Err != nil {
			continue
		}
		for _, it := range layer.Interlocutors {
			if it.Name == "" {
				continue
			}
			if i, ok := itIndex[it.Name]; ok {
				spec.Interlocutors[i] = overlay(spec.Interlocutors[i], it)
				continue
			}
			itIndex[it.Name] = len(spec.Interlocutors)
			cp := *it
			spec.Interlocutors = append(spec.Interlocutors, &cp)
		}
		for _, m := range layer.Macros {
			key := MacroKey(m.Name)
			if i, ok := macroIndex[key]; ok {
				spec.Macros[i] = m
				continue
			}
			macroIndex[key] = len(spec.Macros)
			spec.Macros = append(spec.Macros, m)
		}
		for _, k := range layer.Kits {
			if i, ok := kitIndex[k.Name]; ok {
				spec.Kits[i] = k
				continue
			}
			kitIndex[k.Name] = len(spec.Kits)
			spec.Kits = append(spec.Kits, k)
		}
	}
	return spec
}

// overlay returns next with every field it leaves unset taken from base.
func overlay(base, next *Interlocutor) *Interlocutor {
	out := *next
	if next.set&fieldPrompt == 0 || !next.HasPrompt {
		if base.HasPrompt {
			out.Prompt = base.Prompt
			out.HasPrompt = true
			out.PromptSource = base.PromptSource
		}
	}
	if next.set&fieldProvider == 0 {
		out.Provider = base.Provider
	}
	if next.set&fieldModel == 0 {
		out.Model = base.Model
		out.ModelSpan = base.ModelSpan
	}
	if next.set&fieldTools == 0 {
		out.Tools = base.Tools
	}
	if next.set&fieldHooks == 0 {
		out.Hooks = base.Hooks
	}
	return &out
}
