//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package storagestate

import "errors"

const (
	// StatusReadOnly pauses all background maintenance, including merge
	// selection, until the store becomes ready again.
	StatusReadOnly Status = "READONLY"
	StatusReady    Status = "READY"
	// StatusShuttingDown is terminal, maintenance loops drain and exit.
	StatusShuttingDown Status = "SHUTTINGDOWN"
)

var (
	ErrStatusReadOnly = errors.New("store is read-only")
	ErrInvalidStatus  = errors.New("invalid storage status")
)

type Status string

func (s Status) String() string {
	return string(s)
}

func ValidateStatus(in string) (status Status, err error) {
	switch in {
	case string(StatusReadOnly):
		status = StatusReadOnly
	case string(StatusReady):
		status = StatusReady
	case string(StatusShuttingDown):
		status = StatusShuttingDown
	default:
		err = ErrInvalidStatus
	}

	return
}
