package component

// Kind is the classified device kind of a discovered peripheral.
type Kind int

const (
	KindUnknown Kind = iota
	KindBagTagPrinter
	KindBoardingPassPrinter
	KindFeeder
	KindDispenser
	KindBarcodeReader
	KindDocumentReader
	KindCardReader
	KindRFIDReader
	KindScale
	KindInsertionBelt
	KindVerificationBelt
	KindParkingBelt
	KindAnnouncement
	KindIllumination
	KindHeadset
	KindKeypad
	KindBiometric
)

var kindNames = map[Kind]string{
	KindUnknown:             "UNKNOWN",
	KindBagTagPrinter:       "BAG_TAG_PRINTER",
	KindBoardingPassPrinter: "BOARDING_PASS_PRINTER",
	KindFeeder:              "FEEDER",
	KindDispenser:           "DISPENSER",
	KindBarcodeReader:       "BARCODE_READER",
	KindDocumentReader:      "DOCUMENT_READER",
	KindCardReader:          "CARD_READER",
	KindRFIDReader:          "RFID_READER",
	KindScale:               "SCALE",
	KindInsertionBelt:       "INSERTION_BELT",
	KindVerificationBelt:    "VERIFICATION_BELT",
	KindParkingBelt:         "PARKING_BELT",
	KindAnnouncement:        "ANNOUNCEMENT",
	KindIllumination:        "ILLUMINATION",
	KindHeadset:             "HEADSET",
	KindKeypad:              "KEYPAD",
	KindBiometric:           "BIOMETRIC",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseKind resolves a kind name. Unrecognized names map to
// KindUnknown.
func ParseKind(name string) Kind {
	for kind, kindName := range kindNames {
		if kindName == name {
			return kind
		}
	}
	return KindUnknown
}
