package snapshot

// styleSampleJS runs in the page after layout and reports computed styles
// for visible text-bearing elements. Backgrounds walk up the ancestor chain
// because computed backgroundColor is transparent for most elements.
const styleSampleJS = `(() => {
	const MAX_SAMPLES = 400;
	const selector = 'p, span, a, li, h1, h2, h3, h4, h5, h6, button, label, td, th, dt, dd, figcaption, input, select, textarea, summary';
	const samples = [];

	const effectiveBackground = (el) => {
		let node = el;
		while (node && node !== document.documentElement) {
			const bg = getComputedStyle(node).backgroundColor;
			if (bg && bg !== 'transparent' && bg !== 'rgba(0, 0, 0, 0)') {
				return bg;
			}
			node = node.parentElement;
		}
		const rootBg = getComputedStyle(document.documentElement).backgroundColor;
		if (rootBg && rootBg !== 'transparent' && rootBg !== 'rgba(0, 0, 0, 0)') {
			return rootBg;
		}
		return 'rgb(255, 255, 255)';
	};

	const isInteractive = (el) => {
		const tag = el.tagName.toLowerCase();
		if (tag === 'button' || tag === 'select' || tag === 'textarea' || tag === 'input') {
			return true;
		}
		if (tag === 'a' && el.hasAttribute('href')) {
			return true;
		}
		return el.hasAttribute('tabindex');
	};

	for (const el of document.querySelectorAll(selector)) {
		if (samples.length >= MAX_SAMPLES) {
			break;
		}
		const text = (el.textContent || '').trim();
		if (!text && !isInteractive(el)) {
			continue;
		}
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 || rect.height === 0) {
			continue;
		}
		const style = getComputedStyle(el);
		if (style.visibility === 'hidden' || style.display === 'none') {
			continue;
		}
		samples.push({
			tag: el.tagName.toLowerCase(),
			excerpt: (el.outerHTML || '').slice(0, 200),
			text: text.slice(0, 80),
			color: style.color,
			background: effectiveBackground(el),
			fontSize: parseFloat(style.fontSize) || 0,
			fontWeight: parseInt(style.fontWeight, 10) || 400,
			outlineStyle: style.outlineStyle,
			outlineWidth: style.outlineWidth,
			interactive: isInteractive(el),
		});
	}
	return samples;
})()`
