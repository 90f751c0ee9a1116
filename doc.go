// Package photomosaic builds photomosaics: an output image in which every
// cell of a grid laid over a source image is replaced by the best fitting
// image from a pool of candidate tiles.
//
// Tiles are compared to the source cells with a fixed squared pixel-block
// distance at a configurable match resolution. Cells are filled from the
// center of the image outwards and tiles may optionally be consumed, so
// that each tile (including its rotated variants) appears at most once in
// the result.
//
// It ships with an executable program to generate mosaics, preprocess tile
// directories and run batches of source images.
package photomosaic
