// Package config loads display and debug-draw settings from HCL files.
//
// A config file has two optional blocks; every attribute falls back to
// the defaults in Default():
//
//	display {
//	  title  = "debug lines"
//	  width  = 800
//	  height = 600
//	  vsync  = true
//	  device = "wgpu"
//	}
//
//	debug {
//	  line_width  = 1.0
//	  clear_color = black
//	  grid_step   = 50
//	}
//
// Color attributes accept either a four-element list [r, g, b, a] or one
// of the named constants (black, white, red, green, blue, transparent).
package config
