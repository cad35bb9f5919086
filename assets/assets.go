// Package assets embeds the default lesson shaders and textures.
package assets

import "embed"

// Shaders holds shaders/<lesson>/shader.vert and shader.frag for every lesson.
//
//go:embed shaders
var Shaders embed.FS

// Textures holds the images under textures/.
//
//go:embed textures
var Textures embed.FS
