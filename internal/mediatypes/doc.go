// Package mediatypes defines the media kinds accepted at intake and the
// extension and MIME tables used to recognise them.
//
// It is a dependency-free foundation shared by the intake, thumbnail and
// handlers packages.
//
// # Kinds
//
//	mediatypes.KindJPEG        // .jpg, .jpeg, image/jpeg, image/jpg
//	mediatypes.KindPNG         // .png, image/png
//	mediatypes.KindRAW         // .arw only; recognised by suffix
//	mediatypes.KindUnsupported // everything else
//
// Camera RAW containers are recognised by filename suffix alone. Browsers and
// upload clients rarely agree on a MIME type for them, so a declared RAW type
// without the suffix is not enough to route a file to the RAW extractor.
//
//	kind := mediatypes.Detect("IMG_0042.ARW", "application/octet-stream") // KindRAW
//	kind  = mediatypes.Detect("photo", "image/png")                        // KindPNG
package mediatypes
