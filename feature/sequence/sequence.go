// Package sequence stages and publishes level sequences.
//
// Sequences bind actors by soft path, so they can be published before the
// actors exist in the destination world; the bindings are rewritten by the
// final soft reference sweep. Sub-sequences are strong references and are
// staged, and therefore published, before the sequences that contain them.
package sequence

import (
	"context"
	"fmt"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/scene"
)

// Stage is the name sequences are logged and reported under.
const Stage = "sequences"

// Import stages every sequence of the filtered scene. Actors must be staged
// first. Sub-sequences are staged before their parents; a sub-sequence cycle
// is broken with a warning.
func Import(ctx context.Context, ic *importer.Context) int {
	byName := make(map[string]*scene.Sequence, len(ic.Filtered.Sequences))
	for _, q := range ic.Filtered.Sequences {
		byName[q.Name] = q
	}

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(byName))
	staged := 0

	var visit func(q *scene.Sequence) bool
	visit = func(q *scene.Sequence) bool {
		switch state[q.Name] {
		case visiting:
			ic.Log.Warn(Stage, q.Name, "sub-sequence cycle through %s", q.Name)
			return false
		case done:
			return true
		}
		state[q.Name] = visiting
		for _, sub := range q.SubSequences {
			if s, ok := byName[sub]; ok {
				visit(s)
			}
		}
		state[q.Name] = done
		if ic.Cancelled(ctx) {
			return false
		}
		if err := stage(ic, q); err != nil {
			ic.Log.Warn(Stage, q.Name, "%v", err)
			return false
		}
		staged++
		return true
	}

	for _, q := range ic.Filtered.Sequences {
		if ic.Cancelled(ctx) {
			break
		}
		visit(q)
	}
	return staged
}

func stage(ic *importer.Context, q *scene.Sequence) error {
	if q.FrameRate < 0 || q.Duration < 0 {
		return fmt.Errorf("sequence has a negative frame rate or duration")
	}
	o, err := ic.StageObject(importer.AreaSequences, object.KindLevelSequence, q)
	if err != nil {
		return err
	}
	frameRate := q.FrameRate
	if frameRate == 0 {
		frameRate = 30
	}
	o.Set("FrameRate", object.Float(frameRate))
	o.Set("Duration", object.Float(q.Duration))

	for i, name := range q.Bindings {
		actor, ok := ic.Resolve(importer.AreaWorld, "", ic.Actors, name)
		if !ok {
			ic.Log.Warn(Stage, q.Name, "bound actor %s is not part of the import", name)
			continue
		}
		o.Set(fmt.Sprintf("Binding.%d", i), object.SoftValue(actor.Path()))
	}
	for i, name := range q.SubSequences {
		sub, ok := ic.Resolve(importer.AreaSequences, object.KindLevelSequence, ic.Sequences, name)
		if !ok {
			ic.Log.Warn(Stage, q.Name, "sub-sequence %s is not available", name)
			continue
		}
		o.Set(fmt.Sprintf("SubSequence.%d", i), object.StrongValue(sub.ID))
	}
	return ic.Sequences.Set(q.ID, o)
}

// Finalize publishes the staged sequences in staging order.
func Finalize(ctx context.Context, ic *importer.Context) []*object.Object {
	return ic.FinalizeMap(ctx, Stage, importer.AreaSequences, ic.Sequences, nil, nil)
}
