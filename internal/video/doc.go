// Package video assembles the finished slideshow by shelling out to
// ffmpeg: the downloaded images share the narration's duration equally
// and the audio track runs underneath. ffprobe supplies the duration
// measurements.
package video
