// Package seqnet implements the small sequence-to-one regressor used
// for occupancy forecasting: a GRU cell unrolled over a fixed number
// of timesteps followed by a linear projection, trained with mean
// squared error. Networks are deterministic for a fixed seed and are
// persisted together with an artifact header that pins the
// window-length and normalization contract shared with the inference
// service.
package seqnet
