package wire

// EnvironmentData is the platform's declared identity and session limits,
// fetched once during initialization.
type EnvironmentData struct {
	// DeviceID is the platform-assigned kiosk identifier.
	DeviceID string `json:"deviceID"`

	// CUSSVersions lists the protocol versions the platform supports.
	CUSSVersions []string `json:"cussVersions,omitempty"`

	// SessionTimeout is the passenger inactivity limit in seconds.
	SessionTimeout int `json:"sessionTimeout,omitempty"`

	// KillTimeout is the grace period before a stuck application is
	// terminated, in seconds.
	KillTimeout int `json:"killTimeout,omitempty"`

	// InitializeTimeout bounds the INITIALIZE phase, in seconds.
	InitializeTimeout int `json:"initTimeout,omitempty"`
}

// ComponentType is the declared device family of a peripheral.
type ComponentType string

const (
	ComponentTypeFeeder       ComponentType = "FEEDER"
	ComponentTypeDispenser    ComponentType = "DISPENSER"
	ComponentTypeMediaOutput  ComponentType = "MEDIA_OUTPUT"
	ComponentTypeMediaInput   ComponentType = "MEDIA_INPUT"
	ComponentTypeDataInput    ComponentType = "DATA_INPUT"
	ComponentTypeDataOutput   ComponentType = "DATA_OUTPUT"
	ComponentTypeUserInput    ComponentType = "USER_INPUT"
	ComponentTypeUserOutput   ComponentType = "USER_OUTPUT"
	ComponentTypeScale        ComponentType = "SCALE"
	ComponentTypeConveyor     ComponentType = "CONVEYOR"
	ComponentTypeAnnouncement ComponentType = "ANNOUNCEMENT"
	ComponentTypeIllumination ComponentType = "ILLUMINATION"
	ComponentTypeHeadset      ComponentType = "HEADSET"
	ComponentTypeBiometric    ComponentType = "BIOMETRIC"
)

// MediaType names the physical media a peripheral consumes or produces.
type MediaType string

const (
	MediaBaggageTag   MediaType = "BAGGAGETAG"
	MediaBoardingPass MediaType = "BOARDINGPASS"
	MediaPassport     MediaType = "PASSPORT"
	MediaMagCard      MediaType = "MAGCARD"
	MediaRFID         MediaType = "RFID"
)

// DsType names a data stream format a peripheral supports.
type DsType string

const (
	DsTypeBarcode   DsType = "DS_TYPES_BARCODE"
	DsTypeCodeline  DsType = "DS_TYPES_CODELINE"
	DsTypeMagCard   DsType = "DS_TYPES_ISO"
	DsTypeRFID      DsType = "DS_TYPES_RF"
	DsTypeKey       DsType = "DS_TYPES_KEY"
	DsTypeSSML      DsType = "DS_TYPES_SSML10"
	DsTypeITPS      DsType = "DS_TYPES_ITPS"
	DsTypeBiometric DsType = "DS_TYPES_BIOMETRIC"
	DsTypeScale     DsType = "DS_TYPES_SBD_AEA"
)

// ConveyorType distinguishes the belts of a bag drop unit.
type ConveyorType string

const (
	ConveyorInsertion    ConveyorType = "INSERTION"
	ConveyorVerification ConveyorType = "VERIFICATION"
	ConveyorParking      ConveyorType = "PARKING"
)

// EnvironmentComponent is one peripheral as reported by the platform's
// component inventory.
type EnvironmentComponent struct {
	// ComponentID is unique within the session.
	ComponentID int `json:"componentID"`

	// ComponentType is the declared device family.
	ComponentType ComponentType `json:"componentType"`

	// ComponentDescription is operator-facing free text.
	ComponentDescription string `json:"componentDescription,omitempty"`

	// ConveyorType is set for CONVEYOR components only.
	ConveyorType ConveyorType `json:"conveyorType,omitempty"`

	// LinkedComponentIDs names the peripherals sharing this component's
	// linkage group (a printer lists its feeder and dispenser here).
	LinkedComponentIDs []int `json:"linkedComponentIDs,omitempty"`

	// ComponentCharacteristics declares supported data and media types.
	ComponentCharacteristics []ComponentCharacteristics `json:"componentCharacteristics,omitempty"`
}

// ComponentCharacteristics declares what one peripheral can read or write.
type ComponentCharacteristics struct {
	DsTypesList    []DsType    `json:"dsTypesList,omitempty"`
	MediaTypesList []MediaType `json:"mediaTypesList,omitempty"`
}

// HasMediaType reports whether any characteristic lists the media type.
func (c *EnvironmentComponent) HasMediaType(mt MediaType) bool {
	for _, cc := range c.ComponentCharacteristics {
		for _, m := range cc.MediaTypesList {
			if m == mt {
				return true
			}
		}
	}
	return false
}

// HasDsType reports whether any characteristic lists the data stream type.
func (c *EnvironmentComponent) HasDsType(ds DsType) bool {
	for _, cc := range c.ComponentCharacteristics {
		for _, d := range cc.DsTypesList {
			if d == ds {
				return true
			}
		}
	}
	return false
}
