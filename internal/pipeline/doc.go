// Package pipeline runs the stages that turn an animal subject into a
// narrated slideshow video: pick a subject, generate narration, source
// images, synthesize speech, assemble the video and optionally deliver
// it. Stages are strictly sequential; transient artifacts are cleaned
// up whether the run succeeds or fails.
package pipeline
