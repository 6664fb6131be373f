// Package encoding implements the sparse frame record codec.
//
// A detector frame is mostly background (0) with a few saturated or invalid
// pixels (65535). SparseEncoder keeps only the pixels in between:
//
//	count   uint32
//	indices [count]uint32 // row-major flat index, ascending
//	values  [count]uint16
//
// Indices are stored as full 32-bit values; there is no delta or run-length
// coding. The byte order is the encoder's endian engine, host order by default.
//
// Typical use with a container reader filling the encoder's scratch frame:
//
//	enc, _ := encoding.NewSparseEncoder(rows, cols)
//	for i := range frames {
//	    if err := r.ReadFrame(path, i, enc.Frame()); err != nil {
//	        return err
//	    }
//	    if _, err := enc.WriteRecord(w, enc.EncodeFrame()); err != nil {
//	        return err
//	    }
//	}
package encoding
