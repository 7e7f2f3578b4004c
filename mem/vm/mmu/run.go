package mmu

import (
	"errors"
	"fmt"
	"io"
)

type addressTranslator interface {
	Translate(la uint64) (uint64, error)
}

// run pumps the addresses from the source through the translator into the
// sink. Nothing is written for the address that fails.
func run(t addressTranslator, src AddressSource, sink AddressSink) error {
	for {
		la, err := src.ReadAddress()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read logical address: %w", err)
		}

		pa, err := t.Translate(la)
		if err != nil {
			return err
		}

		err = sink.WriteAddress(pa)
		if err != nil {
			return fmt.Errorf("%w: physical address 0x%x: %w",
				ErrWriteFailure, pa, err)
		}
	}
}
