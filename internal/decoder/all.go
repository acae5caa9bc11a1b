package decoder

// All returns one instance of every built-in decoder, in the fixed order
// that becomes the registry's stable iteration order. A hash-cracking
// decoder is intentionally excluded: it depends on an external lookup
// service, out of scope for the core search.
func All() []Decoder {
	return []Decoder{
		Base64Decoder{},
		HexadecimalDecoder{},
		Base32HexDecoder{},
		Base45Decoder{},
		BinaryDecoder{},
		OctalDecoder{},
		DecimalDecoder{},
		HTMLEntityDecoder{},
		QuotedPrintableDecoder{},
		PunycodeDecoder{},
		UUEncodeDecoder{},
		NatoPhoneticDecoder{},
		BaconianDecoder{},
		ReverseDecoder{},
		Rot47Decoder{},
		CaesarDecoder{},
		AffineDecoder{},
		RailfenceDecoder{},
		VigenereDecoder{},
		BeaufortDecoder{},
		CitrixCTX1Decoder{},
	}
}
