package codegen

import "fmt"

// header emits the bindings and launch-parameter uniform shared by every
// kernel: an input buffer (when present), an output buffer, and the
// params uniform the kernel uses for its bounds check.
func header(bindings string, paramsFields string) string {
	return fmt.Sprintf(
		"%s\nstruct LaunchParams {\n%s\n}\n@group(0) @binding(9) var<uniform> params: LaunchParams;\n",
		bindings, paramsFields,
	)
}

// MapPixel synthesizes the device-source kernel for a map_pixel
// operation (spec.md §4.4 "map_pixel"): if in-bounds, load img_in[col,row],
// call the user body, store into img_out[col,row].
func MapPixel(p MapPixelParams) string {
	return fmt.Sprintf(`@group(0) @binding(0) var<storage, read> img_in: array<%s>;
@group(0) @binding(1) var<storage, read_write> img_out: array<%s>;
struct LaunchParams { width: u32, height: u32 }
@group(0) @binding(9) var<uniform> params: LaunchParams;

fn user_body(in: %s) -> %s {
%s
}

@compute @workgroup_size(%d, %d, 1)
fn kernel(@builtin(global_invocation_id) gid: vec3<u32>) {
	let col = gid.x;
	let row = gid.y;
	if (col < params.width && row < params.height) {
		let idx = row * params.width + col;
		img_out[idx] = user_body(img_in[idx]);
	}
}
`,
		wgslPixelType(p.InType), wgslPixelType(p.OutType),
		wgslPixelType(p.InType), wgslPixelType(p.OutType),
		p.Body,
		BlockWidth, BlockHeight,
	)
}

// MapImage synthesizes the device-source kernel for a map_image operation
// (spec.md §4.4 "map_image"): if in-bounds of the declared output, call
// the user body with the entire input image view plus the (col,row)
// indices and store.
func MapImage(p MapImageParams) string {
	return fmt.Sprintf(`@group(0) @binding(0) var<storage, read> img_in: array<%s>;
@group(0) @binding(1) var<storage, read_write> img_out: array<%s>;
struct LaunchParams { in_width: u32, in_height: u32, out_width: u32, out_height: u32 }
@group(0) @binding(9) var<uniform> params: LaunchParams;

fn user_body(img: Image<%s>, col: u32, row: u32) -> %s {
%s
}

@compute @workgroup_size(%d, %d, 1)
fn kernel(@builtin(global_invocation_id) gid: vec3<u32>) {
	let col = gid.x;
	let row = gid.y;
	if (col < params.out_width && row < params.out_height) {
		let view = Image<%s>(img_in, params.in_width, params.in_height);
		let out_idx = row * params.out_width + col;
		img_out[out_idx] = user_body(view, col, row);
	}
}
`,
		wgslPixelType(p.InType), wgslPixelType(p.OutType),
		wgslPixelType(p.InType), wgslPixelType(p.OutType),
		p.Body,
		BlockWidth, BlockHeight,
		wgslPixelType(p.InType),
	)
}

// Flip synthesizes the device-source kernel for a flip operation (spec.md
// §4.4 "flip"): if in-bounds, write img_out[width-1-col, height-1-row] =
// img_in[col,row].
func Flip(p FlipParams) string {
	return fmt.Sprintf(`@group(0) @binding(0) var<storage, read> img_in: array<%s>;
@group(0) @binding(1) var<storage, read_write> img_out: array<%s>;
struct LaunchParams { width: u32, height: u32 }
@group(0) @binding(9) var<uniform> params: LaunchParams;

@compute @workgroup_size(%d, %d, 1)
fn kernel(@builtin(global_invocation_id) gid: vec3<u32>) {
	let col = gid.x;
	let row = gid.y;
	if (col < params.width && row < params.height) {
		let src_idx = row * params.width + col;
		let dst_col = params.width - 1u - col;
		let dst_row = params.height - 1u - row;
		let dst_idx = dst_row * params.width + dst_col;
		img_out[dst_idx] = img_in[src_idx];
	}
}
`,
		wgslPixelType(p.PixelType), wgslPixelType(p.PixelType),
		BlockWidth, BlockHeight,
	)
}

// HConcat synthesizes the device-source kernel for an h_concat operation
// (spec.md §4.4 "h_concat"): for each (col,row), sample the left image if
// col < width_left, else the right image offset by width_left, and write
// to the output.
func HConcat(p HConcatParams) string {
	return fmt.Sprintf(`@group(0) @binding(0) var<storage, read> img_left: array<%s>;
@group(0) @binding(1) var<storage, read> img_right: array<%s>;
@group(0) @binding(2) var<storage, read_write> img_out: array<%s>;
struct LaunchParams { left_width: u32, right_width: u32, height: u32 }
@group(0) @binding(9) var<uniform> params: LaunchParams;

@compute @workgroup_size(%d, %d, 1)
fn kernel(@builtin(global_invocation_id) gid: vec3<u32>) {
	let col = gid.x;
	let row = gid.y;
	let out_width = params.left_width + params.right_width;
	if (col < out_width && row < params.height) {
		var value: %s;
		if (col < params.left_width) {
			value = img_left[row * params.left_width + col];
		} else {
			value = img_right[row * params.right_width + (col - params.left_width)];
		}
		img_out[row * out_width + col] = value;
	}
}
`,
		wgslPixelType(p.PixelType), wgslPixelType(p.PixelType), wgslPixelType(p.PixelType),
		BlockWidth, BlockHeight,
		wgslPixelType(p.PixelType),
	)
}

// VConcat synthesizes the device-source kernel for a v_concat operation
// (spec.md §4.4 "v_concat"): analogous to HConcat, splitting rows at
// height_top.
func VConcat(p VConcatParams) string {
	return fmt.Sprintf(`@group(0) @binding(0) var<storage, read> img_top: array<%s>;
@group(0) @binding(1) var<storage, read> img_bottom: array<%s>;
@group(0) @binding(2) var<storage, read_write> img_out: array<%s>;
struct LaunchParams { width: u32, top_height: u32, bottom_height: u32 }
@group(0) @binding(9) var<uniform> params: LaunchParams;

@compute @workgroup_size(%d, %d, 1)
fn kernel(@builtin(global_invocation_id) gid: vec3<u32>) {
	let col = gid.x;
	let row = gid.y;
	let out_height = params.top_height + params.bottom_height;
	if (col < params.width && row < out_height) {
		var value: %s;
		if (row < params.top_height) {
			value = img_top[row * params.width + col];
		} else {
			value = img_bottom[(row - params.top_height) * params.width + col];
		}
		img_out[row * params.width + col] = value;
	}
}
`,
		wgslPixelType(p.PixelType), wgslPixelType(p.PixelType), wgslPixelType(p.PixelType),
		BlockWidth, BlockHeight,
		wgslPixelType(p.PixelType),
	)
}

// MapPatch synthesizes the device-source kernel for a map_patch operation
// (spec.md §4.4 "map_patch"): a halo/tile algorithm with static shared
// memory. Interior threads (outside the halo ring) construct a Patch view
// into shared memory and call the user body; halo threads only
// participate in the cooperative load and return after the barrier.
func MapPatch(p MapPatchParams) string {
	padding := p.Dimension / 2
	return fmt.Sprintf(`@group(0) @binding(0) var<storage, read> img_in: array<%s>;
@group(0) @binding(1) var<storage, read_write> img_out: array<%s>;
struct LaunchParams { width: u32, height: u32 }
@group(0) @binding(9) var<uniform> params: LaunchParams;

var<workgroup> shared_tile: array<%s, %d>;

const PADDING: u32 = %du;
const DIMENSION: u32 = %du;
const INNER_WIDTH: u32 = %du;
const INNER_HEIGHT: u32 = %du;

fn user_body(patch: Patch<DIMENSION, %s>) -> %s {
%s
}

@compute @workgroup_size(%d, %d, 1)
fn kernel(
	@builtin(workgroup_id) wid: vec3<u32>,
	@builtin(local_invocation_id) lid: vec3<u32>,
) {
	// Each workgroup's output region is shrunk by the halo on every side
	// (spec.md §4.4), so the source coordinate must stride by
	// block_width - 2*padding per workgroup, not by the full block_width
	// that global_invocation_id would give.
	let src_col = i32(wid.x * INNER_WIDTH + lid.x) - i32(PADDING);
	let src_row = i32(wid.y * INNER_HEIGHT + lid.y) - i32(PADDING);
	var pixel_value: %s;
	if (src_col >= 0 && u32(src_col) < params.width && src_row >= 0 && u32(src_row) < params.height) {
		pixel_value = img_in[u32(src_row) * params.width + u32(src_col)];
	}
	shared_tile[lid.x + lid.y * %du] = pixel_value;

	workgroupBarrier();

	if (lid.x < PADDING || lid.x + PADDING >= %du || lid.y < PADDING || lid.y + PADDING >= %du) {
		return;
	}

	let out_col = u32(src_col);
	let out_row = u32(src_row);
	if (out_col < params.width && out_row < params.height) {
		let patch = Patch<DIMENSION, %s>(&shared_tile, lid.x, lid.y, %du);
		img_out[out_row * params.width + out_col] = user_body(patch);
	}
}
`,
		wgslPixelType(p.InType), wgslPixelType(p.OutType),
		wgslPixelType(p.InType), BlockWidth*BlockHeight,
		padding, p.Dimension,
		BlockWidth-2*padding, BlockHeight-2*padding,
		wgslPixelType(p.InType), wgslPixelType(p.OutType),
		p.Body,
		BlockWidth, BlockHeight,
		wgslPixelType(p.InType),
		BlockWidth,
		BlockWidth, BlockHeight,
		wgslPixelType(p.InType), BlockWidth,
	)
}
