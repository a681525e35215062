// Package timecode converts between integer milliseconds and the textual time
// forms used by subforge: the subtitle display form (HH:MM:SS,mmm), free-form
// user input (SS, MM:SS, HH:MM:SS) and the compact form embedded in chunk
// identifiers.
package timecode
