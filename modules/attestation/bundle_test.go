package attestation_test

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gametrade/zkescrow/modules/attestation"
)

// ParseBundle consumes the JSON shape emitted by the proof exporter pipeline
// (0x-hex bytes32 fields, numeric v, unix-seconds timestamp).
func (s *AttestationTestSuite) TestParseBundle() {
	bz, err := json.Marshal(s.signedBundle(true, 1_723_640_400))
	s.Require().NoError(err)

	bundle, err := attestation.ParseBundle(bz)
	s.Require().NoError(err)
	s.Require().Equal(attestation.DefaultOriginName, bundle.OriginName)
	s.Require().Equal(uint64(1_723_640_400), bundle.Timestamp)
	s.Require().True(bundle.OwnsGood)

	_, err = s.verifier.Verify(bundle)
	s.Require().NoError(err)

	_, err = attestation.ParseBundle([]byte("not json"))
	s.Require().ErrorIs(err, attestation.ErrInvalidBundle)
}

func (s *AttestationTestSuite) TestBundleValidateBasic() {
	testCases := []struct {
		name     string
		malleate func(bundle *attestation.Bundle)
		expErr   string
	}{
		{
			name:     "valid",
			malleate: func(*attestation.Bundle) {},
			expErr:   "",
		},
		{
			name: "empty origin name",
			malleate: func(bundle *attestation.Bundle) {
				bundle.OriginName = ""
			},
			expErr: "origin name cannot be empty",
		},
		{
			name: "zero hash",
			malleate: func(bundle *attestation.Bundle) {
				bundle.Hash = common.Hash{}
			},
			expErr: "hash cannot be zero",
		},
		{
			name: "zero signature r",
			malleate: func(bundle *attestation.Bundle) {
				bundle.Signature.R = common.Hash{}
			},
			expErr: "signature components cannot be zero",
		},
		{
			name: "zero signature s",
			malleate: func(bundle *attestation.Bundle) {
				bundle.Signature.S = common.Hash{}
			},
			expErr: "signature components cannot be zero",
		},
		{
			name: "zero timestamp",
			malleate: func(bundle *attestation.Bundle) {
				bundle.Timestamp = 0
			},
			expErr: "timestamp cannot be zero",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			bundle := s.signedBundle(true, 1_700_000_000)
			tc.malleate(&bundle)

			err := bundle.ValidateBasic()
			if tc.expErr != "" {
				s.Require().ErrorIs(err, attestation.ErrInvalidBundle)
				s.Require().ErrorContains(err, tc.expErr)
			} else {
				s.Require().NoError(err)
			}
		})
	}
}
