// Package manifest compiles a stage manifest written in CUE and
// cross-validates assembled script Programs against it.
//
// A manifest declares the cast and staging vocabulary a script may use:
// each character with its legal emotions and outfits, plus the known
// backgrounds, GUI elements, and audio cues.
//
//	character: Nayu: {
//		outfit:   "uniform"
//		emotion:  "normal"
//		emotions: ["normal", "happy", "angry"]
//		outfits:  ["uniform", "casual"]
//	}
//	background: ["classroom", "rooftop"]
//	gui:        ["textbox", "namebox"]
//	audio:      ["theme", "click"]
//
// Check runs after assembly and reports every reference a script makes to
// something the manifest does not declare - unknown characters, emotions a
// character does not have, unknown backgrounds and so on - so staging
// mistakes surface at load time with file/line context instead of
// mid-playthrough.
//
// The manifest is optional: without one, cross-validation is skipped and
// scripts are constrained only by the dispatch table's shape rules.
package manifest
