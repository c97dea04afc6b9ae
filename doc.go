// Package geodrill renders a two-level drill-down map for [Ebitengine]: a
// tier of extruded region meshes that, on selecting an administrative unit,
// is replaced by the extruded sub-regions inside it, with points of interest
// marked and labeled beside them.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window, loads the
// region tier and runs the frame loop:
//
//	source := dataset.NewSource(
//		[]string{"/data/province.json"},
//		[]string{"/data/counties.json", "/data/county.json"},
//	)
//	scene := geodrill.NewScene(geodrill.DefaultSceneConfig(), source, nil)
//	geodrill.Run(scene, geodrill.RunConfig{Title: "Map", Width: 1280, Height: 800})
//
// For full control, call [Scene.Start] and drive [Scene.Update] and
// [Scene.Draw] from your own [ebiten.Game].
//
// # Levels
//
// A [ViewController] owns both tiers and the view level. Selecting a region
// whose name an [AdminClassifier] accepts issues a background fetch; the
// result is applied on the frame loop only if it still answers the latest
// request. The sub-region tier is built from the fine dataset by a
// [Matcher], which keeps the features whose centroid, or enough of whose
// sampled vertices, fall inside the selected region. [Scene.Back] (Escape)
// tears the sub-region tier down and restores the regions.
//
// # Interaction
//
// Pointer presses cast a ray through the [Camera]. Labels are tested before
// mesh caps, and only meshes in the current interactive set respond. Input
// is ignored while a [CameraTransition] runs.
//
// # Headless use
//
// Every animation reads the [Clock] passed in [SceneConfig], and
// [ViewController.AwaitResult] applies a load synchronously, so the whole
// state machine can be driven without a window.
//
// [Ebitengine]: https://ebitengine.org
package geodrill
