/*
 *
 * Copyright 2023 CubeFS authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

/*

# kvmaster: metadata master for a disaggregated KV-cache object store

## What it does

kvmaster tracks, for a cluster of clients that pool DRAM/VRAM as raw byte
segments, where every cached object's replicas live. Clients mount their
local memory as named segments; the master carves segments into
first-fit-allocated buffers, hands out replica placements on Put, and
tracks per-object leases so readers and the eviction engine never race on
the same bytes.

The master itself never touches object bytes — data moves client to
client over the mounted segment memory. Its job is metadata: segment
membership, buffer allocation bookkeeping, replica/lease state, garbage
collection, and (in HA mode) client liveness.

## Building Blocks

* gRPC, for the client-facing RPC surface (proto/)
* Prometheus, for metrics (metrics/)
* blobstore's config/log/rpc/profile packages, for the ambient server stack
  (server/, cmd/kvmaster/)

*/

package kvmaster
