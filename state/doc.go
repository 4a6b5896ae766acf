// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the custody ledger: native balances of accounts and
// the storage of native contracts.
//
// All writes go to a journal that supports nested checkpoints, so an aborted
// call can be rolled back completely. Commit flushes the journal to a kv store.
package state
