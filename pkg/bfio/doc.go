// Package bfio provides the BFIO codec: scalar serialization, chunks and planes.
package bfio

// BFIO is communicated between two embedded devices over a byte-oriented
// serial link. Every protocol unit is a 10-bit chunk made of a type band
// (Byte, Div, Start, Check) and a payload byte, sent on the wire as two
// bytes. A plane is Start(functionID), zero or more parameter segments
// (Div followed by Byte chunks) and Check(checksum).
//
// The checksum is the 8-bit sum of every payload byte between Start and
// Check, Div payloads included.
//
// Scalars are serialized little-endian with widths fixed to a 64-bit
// reference architecture, so both ends agree regardless of host width.
