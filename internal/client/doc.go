// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the note client runtime.
//
// One process is one tab: it owns a Reconciler over the shared local store,
// joins the cross-tab notifier and exposes the note operations as cobra
// commands.
package client
