package session

import (
	"fmt"
	"sync"

	"github.com/open-cuss/cuss2-go/pkg/component"
	"github.com/open-cuss/cuss2-go/pkg/wire"
)

// DeviceSet holds every discovered component, both in an id-keyed
// registry and as named slots for the well-known kinds. Populated once
// per session by discovery.
type DeviceSet struct {
	mu  sync.Mutex
	all map[int]component.Device

	BagTagPrinter       *component.Printer
	BoardingPassPrinter *component.Printer
	Feeders             []*component.Component
	Dispensers          []*component.Component
	BarcodeReader       *component.Component
	DocumentReader      *component.Component
	CardReader          *component.Component
	RFIDReader          *component.Component
	Scale               *component.Component
	InsertionBelt       *component.Component
	VerificationBelt    *component.Component
	ParkingBelt         *component.Component
	Announcement        *component.Component
	Illumination        *component.Component
	Headset             *component.Component
	Keypad              *component.Component
	Biometric           *component.Component
}

func newDeviceSet() *DeviceSet {
	return &DeviceSet{all: make(map[int]component.Device)}
}

// Get returns the component with the given identifier, or nil.
func (s *DeviceSet) Get(id int) component.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.all[id]
}

// Len returns the number of discovered components.
func (s *DeviceSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.all)
}

// snapshot returns the registry contents as a slice.
func (s *DeviceSet) snapshot() []component.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]component.Device, 0, len(s.all))
	for _, dev := range s.all {
		out = append(out, dev)
	}
	return out
}

func (s *DeviceSet) put(dev component.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all[dev.ID()] = dev
}

// Devices returns the discovered component set.
func (c *Controller) Devices() *DeviceSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.devices
}

// Component returns the component with the given identifier, or nil.
func (c *Controller) Component(id int) component.Device {
	return c.Devices().Get(id)
}

// SetRequired marks every discovered component of the given kinds as
// gating application availability.
func (c *Controller) SetRequired(kinds ...component.Kind) {
	wanted := make(map[component.Kind]struct{}, len(kinds))
	for _, k := range kinds {
		wanted[k] = struct{}{}
	}
	for _, dev := range c.Devices().snapshot() {
		if _, ok := wanted[dev.Kind()]; ok {
			if base, ok := dev.(interface{ SetRequired(bool) }); ok {
				base.SetRequired(true)
			}
		}
	}
}

// classifyKind maps a platform-reported peripheral onto exactly one
// device kind, by declared family first and by supported data and
// media types where the family is ambiguous.
func classifyKind(ec *wire.EnvironmentComponent) component.Kind {
	switch ec.ComponentType {
	case wire.ComponentTypeFeeder:
		return component.KindFeeder
	case wire.ComponentTypeDispenser:
		return component.KindDispenser
	case wire.ComponentTypeMediaOutput:
		switch {
		case ec.HasMediaType(wire.MediaBaggageTag):
			return component.KindBagTagPrinter
		case ec.HasMediaType(wire.MediaBoardingPass):
			return component.KindBoardingPassPrinter
		}
	case wire.ComponentTypeAnnouncement:
		return component.KindAnnouncement
	case wire.ComponentTypeIllumination:
		return component.KindIllumination
	case wire.ComponentTypeHeadset:
		return component.KindHeadset
	case wire.ComponentTypeScale:
		return component.KindScale
	case wire.ComponentTypeBiometric:
		return component.KindBiometric
	case wire.ComponentTypeConveyor:
		switch ec.ConveyorType {
		case wire.ConveyorInsertion:
			return component.KindInsertionBelt
		case wire.ConveyorVerification:
			return component.KindVerificationBelt
		case wire.ConveyorParking:
			return component.KindParkingBelt
		}
	case wire.ComponentTypeMediaInput, wire.ComponentTypeDataInput:
		switch {
		case ec.HasDsType(wire.DsTypeBarcode):
			return component.KindBarcodeReader
		case ec.HasDsType(wire.DsTypeCodeline) || ec.HasMediaType(wire.MediaPassport):
			return component.KindDocumentReader
		case ec.HasDsType(wire.DsTypeMagCard) || ec.HasMediaType(wire.MediaMagCard):
			return component.KindCardReader
		case ec.HasDsType(wire.DsTypeRFID) || ec.HasMediaType(wire.MediaRFID):
			return component.KindRFIDReader
		case ec.HasDsType(wire.DsTypeBiometric):
			return component.KindBiometric
		}
	case wire.ComponentTypeUserInput:
		if ec.HasDsType(wire.DsTypeKey) {
			return component.KindKeypad
		}
	case wire.ComponentTypeUserOutput, wire.ComponentTypeDataOutput:
		if ec.HasDsType(wire.DsTypeSSML) {
			return component.KindAnnouncement
		}
	}
	return component.KindUnknown
}

// discover instantiates one component per reported peripheral.
// Feeders and dispensers come first so printers can link to them;
// printers follow and fail fatally without both links; everything else
// lands in a single remaining pass. Runs at most once per session.
func (c *Controller) discover(list []wire.EnvironmentComponent) error {
	c.mu.Lock()
	if c.discovered {
		c.mu.Unlock()
		return nil
	}
	set := c.devices
	pollInterval := c.pollInterval
	logger := c.logger
	c.mu.Unlock()

	newComponent := func(id int, kind component.Kind) *component.Component {
		dev := component.New(id, kind, false, c)
		dev.SetPollInterval(pollInterval)
		dev.SetLogger(logger)
		return dev
	}

	for i := range list {
		ec := &list[i]
		switch classifyKind(ec) {
		case component.KindFeeder:
			dev := newComponent(ec.ComponentID, component.KindFeeder)
			set.put(dev)
			set.Feeders = append(set.Feeders, dev)
		case component.KindDispenser:
			dev := newComponent(ec.ComponentID, component.KindDispenser)
			set.put(dev)
			set.Dispensers = append(set.Dispensers, dev)
		}
	}

	for i := range list {
		ec := &list[i]
		kind := classifyKind(ec)
		if kind != component.KindBagTagPrinter && kind != component.KindBoardingPassPrinter {
			continue
		}
		printer, err := component.NewPrinter(*ec, kind, false, c, set.all)
		if err != nil {
			return fmt.Errorf("discovery: %w", err)
		}
		printer.SetPollInterval(pollInterval)
		printer.SetLogger(logger)
		set.put(printer)
		if kind == component.KindBagTagPrinter {
			set.BagTagPrinter = printer
		} else {
			set.BoardingPassPrinter = printer
		}
	}

	for i := range list {
		ec := &list[i]
		kind := classifyKind(ec)
		switch kind {
		case component.KindFeeder, component.KindDispenser,
			component.KindBagTagPrinter, component.KindBoardingPassPrinter:
			continue
		}
		dev := newComponent(ec.ComponentID, kind)
		set.put(dev)

		switch kind {
		case component.KindBarcodeReader:
			set.BarcodeReader = dev
		case component.KindDocumentReader:
			set.DocumentReader = dev
		case component.KindCardReader:
			set.CardReader = dev
		case component.KindRFIDReader:
			set.RFIDReader = dev
		case component.KindScale:
			set.Scale = dev
		case component.KindInsertionBelt:
			set.InsertionBelt = dev
		case component.KindVerificationBelt:
			set.VerificationBelt = dev
		case component.KindParkingBelt:
			set.ParkingBelt = dev
		case component.KindAnnouncement:
			set.Announcement = dev
		case component.KindIllumination:
			set.Illumination = dev
		case component.KindHeadset:
			set.Headset = dev
		case component.KindKeypad:
			set.Keypad = dev
		case component.KindBiometric:
			set.Biometric = dev
		}
	}

	c.mu.Lock()
	c.discovered = true
	c.mu.Unlock()
	c.debug("discovery complete", "components", set.Len())
	return nil
}
